package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/common-nighthawk/go-figure"
	"go.uber.org/zap"

	"github.com/qchain/node/foundation/blockchain/block"
	"github.com/qchain/node/foundation/blockchain/generator"
	"github.com/qchain/node/foundation/blockchain/genesis"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
	"github.com/qchain/node/foundation/blockchain/miner"
	"github.com/qchain/node/foundation/blockchain/signature"
	"github.com/qchain/node/foundation/blockchain/worker"
	"github.com/qchain/node/foundation/keystore"
	"github.com/qchain/node/foundation/logger"
	"github.com/qchain/node/foundation/web"
	netgossip "github.com/qchain/node/internal/gossip"
)

// build is the git version of this program. It can be set at build time
// with -ldflags "-X main.build=...".
var build = "develop"

func main() {
	log, err := logger.New("NODE", os.Getenv("NODE_LOG_LEVEL"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			DebugHost string `conf:"default:0.0.0.0:7080"`
		}
		Chain struct {
			BlockTxCap      int           `conf:"default:4"`
			WorkerPoolSize  int           `conf:"default:4"`
			MinerLambda     time.Duration `conf:"default:2s"`
			GeneratorPeriod time.Duration `conf:"default:3s"`
			InboundQueue    int           `conf:"default:64"`
		}
		Accounts struct {
			Folder         string `conf:"default:zblock/accounts/"`
			Beneficiary    string `conf:"default:miner1"`
			BootstrapCount int    `conf:"default:3"`
			BootstrapFunds uint32 `conf:"default:50"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "qchain node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	art := figure.NewFigure("QChain", "", true)
	art.Print()

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	// =========================================================================
	// Beneficiary Keypair

	if err := os.MkdirAll(cfg.Accounts.Folder, 0700); err != nil {
		return fmt.Errorf("creating accounts folder: %w", err)
	}

	beneficiaryPath := filepath.Join(cfg.Accounts.Folder, cfg.Accounts.Beneficiary+".pem")
	beneficiary, err := keystore.Load(beneficiaryPath)
	if err != nil {
		beneficiary, err = signature.Generate()
		if err != nil {
			return fmt.Errorf("generating beneficiary key: %w", err)
		}
		if err := keystore.Save(beneficiaryPath, beneficiary); err != nil {
			return fmt.Errorf("saving beneficiary key: %w", err)
		}
		log.Infow("startup", "status", "generated beneficiary key", "path", beneficiaryPath)
	}
	log.Infow("startup", "status", "beneficiary", "address", signature.AddressOf(beneficiary.PublicKey))

	// =========================================================================
	// Blockchain Support

	genesisCfg := genesis.Default()
	genesisCfg.BlockTxCap = cfg.Chain.BlockTxCap

	genesisBlock := block.Genesis(genesisCfg.Difficulty)
	l := ledger.New(genesisBlock, ev)
	mp := mempool.New()

	net := netgossip.New(cfg.Chain.InboundQueue)

	// =========================================================================
	// Miner, Worker, Generator

	m := miner.New(l, mp, net, cfg.Chain.BlockTxCap, ev)
	go m.Run()
	m.Start(cfg.Chain.MinerLambda)
	defer m.ShutDown()

	pool := worker.New(l, mp, net, cfg.Chain.WorkerPoolSize, ev)
	pool.Run(net)
	defer pool.Shutdown()

	txGen := generator.New(l, mp, net, cfg.Chain.GeneratorPeriod, ev)
	if _, err := txGen.Bootstrap(cfg.Accounts.BootstrapCount, cfg.Accounts.BootstrapFunds); err != nil {
		return fmt.Errorf("bootstrapping generator accounts: %w", err)
	}
	go txGen.Run()
	defer txGen.ShutDown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := web.DebugMux(build, log, web.DebugInfo{
		Ledger:  l,
		Mempool: mp,
		Peers:   func() []string { return nil },
	})

	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Shutdown Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	sig := <-shutdown
	log.Infow("shutdown", "status", "shutdown started", "signal", sig)
	defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

	return nil
}
