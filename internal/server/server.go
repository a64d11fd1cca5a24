// Package server wires the GraphQL schema and the service endpoints into an
// HTTP server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VitaminP8/gqlapi/internal/metrics"
)

const (
	PathInfo       = "/"
	PathHealth     = "/health"
	PathGraphQL    = "/graphql"
	PathPlayground = "/playground"
	PathMetrics    = "/metrics"
)

type Options struct {
	Schema   *graphql.Schema
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewHandler returns the routed and instrumented handler. /metrics is only
// mounted when a Gatherer is given.
func NewHandler(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleInfo)
	mux.HandleFunc("GET "+PathHealth, handleHealth)
	mux.Handle(PathGraphQL, graphqlws.NewHandlerFunc(opts.Schema, &graphqlHandler{schema: opts.Schema}))
	mux.Handle("GET "+PathPlayground, playground.Handler("GraphQL Playground", PathGraphQL))
	if opts.Gatherer != nil {
		mux.Handle("GET "+PathMetrics, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	known := []string{PathInfo, PathHealth, PathGraphQL, PathPlayground, PathMetrics}
	return RequestLogger(log, Recover(Instrument(opts.Metrics, known, mux)))
}

func handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":            "Welcome to GraphQL API",
		"graphql_playground": PathGraphQL,
		"health_check":       PathHealth,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "GraphQL API",
	})
}

// Run serves handler on addr until ctx is cancelled, then shuts down and
// waits up to shutdownTimeout for in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server error")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "error while shutting down the server")
		}

		log.Info("server stopped")
		return nil
	})

	return g.Wait()
}
