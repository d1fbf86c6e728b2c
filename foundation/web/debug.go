package web

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"go.uber.org/zap"

	"github.com/qchain/node/foundation/blockchain/hash"
	"github.com/qchain/node/foundation/blockchain/ledger"
	"github.com/qchain/node/foundation/blockchain/mempool"
)

// DebugStandardLibraryMux registers the standard library debug endpoints
// (pprof, expvar) under their conventional paths.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugInfo is the read-only surface DebugMux needs to satisfy the
// /debug/chain, /debug/mempool and /debug/peers endpoints.
type DebugInfo struct {
	Ledger  *ledger.Ledger
	Mempool *mempool.Mempool
	Peers   func() []string
}

// DebugMux registers this node's read-only debug endpoints on top of the
// standard library's own, following the teacher's convention of mounting a
// small custom mux alongside pprof/expvar rather than a full API router.
func DebugMux(build string, log *zap.SugaredLogger, info DebugInfo) http.Handler {
	mux := DebugStandardLibraryMux()

	shutdown := make(chan os.Signal, 1)
	app := NewApp(shutdown, Logger(log), Errors(log), Panics())

	app.Handle(http.MethodGet, "", "/debug/build", buildHandler(build))
	app.Handle(http.MethodGet, "", "/debug/chain", chainHandler(info.Ledger))
	app.Handle(http.MethodGet, "", "/debug/mempool", mempoolHandler(info.Mempool))
	app.Handle(http.MethodGet, "", "/debug/peers", peersHandler(info.Peers))

	mux.Handle("/debug/build", app)
	mux.Handle("/debug/chain", app)
	mux.Handle("/debug/mempool", app)
	mux.Handle("/debug/peers", app)

	return mux
}

func buildHandler(build string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		resp := struct {
			Build string `json:"build"`
		}{Build: build}
		return Respond(ctx, w, resp, http.StatusOK)
	}
}

type blockView struct {
	Hash       hash.H256 `json:"hash"`
	Parent     hash.H256 `json:"parent"`
	Height     uint32    `json:"height"`
	Difficulty hash.H256 `json:"difficulty"`
	TxCount    int       `json:"tx_count"`
}

func chainHandler(l *ledger.Ledger) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		chain := l.AllBlocksInLongestChain()

		views := make([]blockView, 0, len(chain))
		for _, h := range chain {
			b, ok := l.Block(h)
			if !ok {
				continue
			}
			height, _ := l.Height(h)
			views = append(views, blockView{
				Hash:       h,
				Parent:     b.Header.Parent,
				Height:     height,
				Difficulty: b.Header.Difficulty,
				TxCount:    len(b.Body),
			})
		}

		return Respond(ctx, w, views, http.StatusOK)
	}
}

func mempoolHandler(mp *mempool.Mempool) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		hashes := mp.Hashes()
		resp := struct {
			Count  int         `json:"count"`
			Hashes []hash.H256 `json:"hashes"`
		}{Count: len(hashes), Hashes: hashes}
		return Respond(ctx, w, resp, http.StatusOK)
	}
}

func peersHandler(peers func() []string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var list []string
		if peers != nil {
			list = peers()
		}
		return Respond(ctx, w, list, http.StatusOK)
	}
}
