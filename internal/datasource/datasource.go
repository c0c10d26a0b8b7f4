package datasource

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
)

// Request is a GraphQL request in its wire form.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// DataSource answers GraphQL requests. Failures are reported inside the response.
type DataSource interface {
	Process(ctx context.Context, req *Request) *graphql.Response
}
