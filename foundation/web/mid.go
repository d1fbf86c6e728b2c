package web

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Logger writes a "request started" entry (trace ID, method, path, remote
// address) before the handler runs and a "request completed" entry (trace
// ID, method, path, status code) after it returns.
func Logger(log *zap.SugaredLogger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := GetValues(ctx)
			if err != nil {
				return ErrInvalidContext
			}

			log.Infow("request started", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)

			err = handler(ctx, w, r)

			log.Infow("request completed", "traceid", v.TraceID, "method", r.Method, "path", r.URL.Path, "statuscode", v.StatusCode)

			return err
		}
		return h
	}
	return m
}

// Errors handles errors coming out of the call chain. Every error is logged
// and answered with a 500 response carrying the error message as JSON; a
// shutdown error is then passed on so the App can signal shutdown, and any
// other error is swallowed so the chain of calls can continue.
func Errors(log *zap.SugaredLogger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if err := handler(ctx, w, r); err != nil {
				v, verr := GetValues(ctx)
				traceID := "unknown"
				if verr == nil {
					traceID = v.TraceID
				}

				log.Errorw("request error", "traceid", traceID, "ERROR", err)

				if err := Respond(ctx, w, struct {
					Error string `json:"error"`
				}{Error: err.Error()}, http.StatusInternalServerError); err != nil {
					return err
				}

				if IsShutdown(err) {
					return err
				}
			}
			return nil
		}
		return h
	}
	return m
}

// Panics recovers from panics and converts the panic to an error so it is
// reported in the normal logging path.
func Panics() Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
				}
			}()
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
