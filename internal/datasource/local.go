package datasource

import (
	"context"

	"github.com/99designs/gqlgen/graphql"

	"github.com/bookshelf-gql/bookshelf/internal/gqlfun"
)

var _ DataSource = (*LocalDataSource)(nil)

// LocalDataSource runs requests against an ExecutableSchema in the same process.
type LocalDataSource struct {
	ExecutableSchema graphql.ExecutableSchema
}

func (ds *LocalDataSource) Process(ctx context.Context, req *Request) *graphql.Response {
	return gqlfun.Execute(ctx, ds.ExecutableSchema, req.Query, req.Variables, req.OperationName)
}
