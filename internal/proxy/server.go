package proxy

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/report"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/router"
)

// NewServer builds the chi mux hosting the proxy routes, mirroring the
// RequestID/logging/Recoverer middleware trio the corpus wires into its
// own HTTP routers. The two reserved /_ovp/* routes are registered
// explicitly; everything else falls through to the proxy Handler.
func NewServer(upstreamBase string, rt *router.Router, store *report.Store, log zerolog.Logger) (http.Handler, error) {
	u, err := url.Parse(upstreamBase)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		UpstreamScheme: u.Scheme,
		UpstreamHost:   u.Host,
		UpstreamPrefix: strings.TrimSuffix(u.Path, "/"),
		Router:         rt,
		Store:          store,
		Client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        128,
				MaxIdleConnsPerHost: 64,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		Log: log,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(requestLogMiddleware(log))
	mux.Use(middleware.Recoverer)

	mux.Get("/_ovp/junit", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(store.RenderJUnit("openapi-validator-proxy"))
	})
	mux.Get("/_ovp/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Anything not matching a reserved route is a forwarding candidate,
	// for any method and any path, including ones the OpenAPI document
	// never declared (the router itself classifies those as
	// PathNotFound/InvalidHTTPMethod).
	mux.NotFound(h.ServeHTTP)
	mux.MethodNotAllowed(h.ServeHTTP)

	return mux, nil
}

func requestLogMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Str("requestId", middleware.GetReqID(r.Context())).
				Msg("request handled")
		})
	}
}
