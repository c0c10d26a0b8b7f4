package gqlfun

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// CreateOperationContext parses and validates query the way the HTTP handler
// does, and returns the OperationContext an ExecutableSchema expects.
func CreateOperationContext(ctx context.Context, schema *ast.Schema, query string, variables map[string]interface{}, operationName string) (*graphql.OperationContext, gqlerror.List) {
	queryDoc, err := parser.ParseQuery(&ast.Source{
		Input:   query,
		BuiltIn: false,
	})
	if err != nil {
		return nil, gqlerror.List{toGQLError(err)}
	}
	gErrs := validator.Validate(schema, queryDoc)
	if len(gErrs) != 0 {
		return nil, gErrs
	}

	operation := queryDoc.Operations.ForName(operationName)
	if operation == nil {
		if operationName != "" {
			return nil, gqlerror.List{gqlerror.Errorf(`unknown operation named "%s"`, operationName)}
		}
		return nil, gqlerror.List{gqlerror.Errorf("must provide operation name if query contains multiple operations")}
	}

	if variables == nil {
		variables = map[string]interface{}{}
	}

	oc := &graphql.OperationContext{
		RawQuery:             query,
		Variables:            variables,
		OperationName:        operationName,
		Doc:                  queryDoc,
		Operation:            operation,
		DisableIntrospection: false,
		RecoverFunc:          graphql.DefaultRecover,
		ResolverMiddleware: func(ctx context.Context, next graphql.Resolver) (res interface{}, err error) {
			return next(ctx)
		},
		RootResolverMiddleware: func(ctx context.Context, next graphql.RootResolver) graphql.Marshaler {
			return next(ctx)
		},
		Stats: graphql.Stats{},
	}

	return oc, nil
}

// Execute runs a single operation against es without going through HTTP.
func Execute(ctx context.Context, es graphql.ExecutableSchema, query string, variables map[string]interface{}, operationName string) *graphql.Response {
	oc, gErrs := CreateOperationContext(ctx, es.Schema(), query, variables, operationName)
	if len(gErrs) != 0 {
		return &graphql.Response{Errors: gErrs}
	}
	ctx = graphql.WithOperationContext(ctx, oc)
	ctx = graphql.WithResponseContext(ctx, graphql.DefaultErrorPresenter, graphql.DefaultRecover)

	rh := es.Exec(ctx)
	resp := rh(ctx)
	if resp == nil {
		resp = &graphql.Response{}
	}
	if gErrs := graphql.GetErrors(ctx); gErrs != nil {
		resp.Errors = append(gErrs, resp.Errors...)
	}
	return resp
}

func toGQLError(err error) *gqlerror.Error {
	var gErr *gqlerror.Error
	if errors.As(err, &gErr) {
		return gErr
	}
	return gqlerror.Wrap(err)
}
