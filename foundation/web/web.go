// Package web is a thin wrapper around httptreemux that gives handlers a
// context-aware, error-returning signature and a single place to apply
// response shaping and panic recovery. It is sized for this repo's
// read-only debug surface, not a full request/response API layer.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
)

// Handler is the signature all handlers and middleware must implement.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// App is the entrypoint into the web application and what configures our
// context object for each of our http handlers.
type App struct {
	*httptreemux.ContextMux
	shutdown chan os.Signal
	mw       []Middleware
}

// NewApp creates an App value that handles a set of routes for the
// application. It accepts the shutdown channel so handlers can trigger a
// graceful shutdown when something catastrophic happens.
func NewApp(shutdown chan os.Signal, mw ...Middleware) *App {
	return &App{
		ContextMux: httptreemux.NewContextMux(),
		shutdown:   shutdown,
		mw:         mw,
	}
}

// SignalShutdown is used to gracefully shut down the app when an integrity
// issue is identified.
func (a *App) SignalShutdown() {
	a.shutdown <- syscall.SIGTERM
}

// Handle associates a handler function with an HTTP method and URL pattern.
// It first wraps the specific handler in the call chain's own middleware,
// then wraps the entire chain with the App's own middleware, outermost
// first.
func (a *App) Handle(method string, group string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v := Values{
			TraceID: uuid.NewString(),
			Now:     time.Now(),
		}
		ctx = context.WithValue(ctx, valuesKey, &v)

		if err := handler(ctx, w, r); err != nil {
			if IsShutdown(err) {
				a.SignalShutdown()
			}
		}
	}

	finalPath := path
	if group != "" {
		finalPath = "/" + group + path
	}

	a.ContextMux.Handle(method, finalPath, h)
}

func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}

// Values represents state for each request, carried via the request's
// context.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

type ctxKey int

const valuesKey ctxKey = 1

// GetValues returns the values stored for this context.
func GetValues(ctx context.Context) (*Values, error) {
	v, ok := ctx.Value(valuesKey).(*Values)
	if !ok {
		return nil, ErrInvalidContext
	}
	return v, nil
}

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	m := httptreemux.ContextParams(r.Context())
	return m[key]
}

// Respond converts a Go value to JSON and sends it to the client.
func Respond(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	if v, err := GetValues(ctx); err == nil {
		v.StatusCode = statusCode
	}

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return err
	}

	return nil
}
