package server

import (
	"context"
	"fmt"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/bookshelf-gql/bookshelf/internal/book"
	"github.com/bookshelf-gql/bookshelf/internal/execute"
	"github.com/bookshelf-gql/bookshelf/internal/log"
	"github.com/bookshelf-gql/bookshelf/internal/resolver"
	"github.com/bookshelf-gql/bookshelf/internal/scalars"
	"github.com/bookshelf-gql/bookshelf/internal/schema"
)

var _ graphql.ExecutableSchema = (*executableSchemaImpl)(nil)

type ExecutableSchemaConfig struct {
	Catalog          *book.Catalog // optional, the seed catalog stamped with the current time
	IgnoreDateFilter bool
}

type executableSchemaImpl struct {
	schema   *ast.Schema
	catalog  *book.Catalog
	resolver *resolver.Resolver
}

// NewExecutableSchema serves the bookshelf schema from an in-memory catalog.
func NewExecutableSchema(ctx context.Context, cfg *ExecutableSchemaConfig) (graphql.ExecutableSchema, error) {
	if cfg == nil {
		cfg = &ExecutableSchemaConfig{}
	}

	s, err := schema.Load()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = book.NewFixtureCatalog(time.Now())
	}

	log.FromContext(ctx).Info("catalog ready", "books", catalog.Len(), "ignoreDateFilter", cfg.IgnoreDateFilter)

	return &executableSchemaImpl{
		schema:   s,
		catalog:  catalog,
		resolver: resolver.NewResolver(catalog, resolver.WithIgnoreDateFilter(cfg.IgnoreDateFilter)),
	}, nil
}

func (es *executableSchemaImpl) Schema() *ast.Schema {
	return es.schema
}

// Complexity charges list fields of the query root once per book.
func (es *executableSchemaImpl) Complexity(typeName, fieldName string, childComplexity int, args map[string]interface{}) (int, bool) {
	if typeName != "Query" {
		return 0, false
	}
	switch fieldName {
	case "books", "bookByDate":
		return 1 + es.catalog.Len()*childComplexity, true
	}
	return 0, false
}

func (es *executableSchemaImpl) Exec(ctx context.Context) graphql.ResponseHandler {
	oc := graphql.GetOperationContext(ctx)

	resp, gErr := execute.Execute(ctx, &execute.ExecutionArgs{
		Schema:         es.schema,
		Document:       oc.Doc,
		VariableValues: oc.Variables,
		OperationName:  oc.OperationName,
		FieldResolver:  es.resolver.ResolveField,
		Scalars:        scalars.Default,
	})
	if gErr != nil {
		graphql.AddError(ctx, gErr)
		return func(ctx context.Context) *graphql.Response {
			return &graphql.Response{Errors: graphql.GetErrors(ctx)}
		}
	}

	return graphql.OneShot(resp)
}
