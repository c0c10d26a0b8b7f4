package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/bookshelf-gql/bookshelf/internal/log"
)

var _ DataSource = (*RemoteDataSource)(nil)

// RemoteDataSource posts requests to a GraphQL endpoint over HTTP.
type RemoteDataSource struct {
	URL string

	Client *http.Client // optional
}

func (ds *RemoteDataSource) Process(ctx context.Context, req *Request) *graphql.Response {
	hc := ds.Client
	if hc == nil {
		hc = http.DefaultClient
	}

	b, err := json.Marshal(req)
	if err != nil {
		return errorResponse(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ds.URL, bytes.NewReader(b))
	if err != nil {
		return errorResponse(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := hc.Do(httpReq)
	if err != nil {
		return errorResponse(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err = io.ReadAll(resp.Body)
	if err != nil {
		return errorResponse(err)
	}

	log.FromContext(ctx).V(1).Info("remote response", "url", ds.URL, "status", resp.StatusCode, "bytes", len(b))

	// validation failures come back as 422 with a regular GraphQL body
	gqlResp := &graphql.Response{}
	err = json.Unmarshal(b, gqlResp)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return errorResponse(gqlerror.Errorf("unexpected response code: %d", resp.StatusCode))
		}
		return errorResponse(err)
	}
	if resp.StatusCode != http.StatusOK && len(gqlResp.Errors) == 0 {
		return errorResponse(gqlerror.Errorf("unexpected response code: %d", resp.StatusCode))
	}

	return gqlResp
}

func errorResponse(err error) *graphql.Response {
	return &graphql.Response{
		Errors: gqlerror.List{gqlerror.WrapIfUnwrapped(err)},
	}
}
