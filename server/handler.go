package server

import (
	"context"
	"io"
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/playground"

	"github.com/bookshelf-gql/bookshelf/internal/config"
	"github.com/bookshelf-gql/bookshelf/internal/log"
)

// NewHandler exposes es over HTTP with the query UI next to it.
// The logger of ctx is attached to every request.
func NewHandler(ctx context.Context, es graphql.ExecutableSchema, cfg *config.Config) http.Handler {
	srv := handler.NewDefaultServer(es)
	if cfg.ComplexityLimit > 0 {
		srv.Use(extension.FixedComplexityLimit(cfg.ComplexityLimit))
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.QueryPath, srv)
	mux.Handle(cfg.PlaygroundPath, playground.Handler("bookshelf", cfg.QueryPath))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})

	return log.Middleware(log.FromContext(ctx), mux)
}
