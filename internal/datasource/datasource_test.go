package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	testlogr "github.com/go-logr/logr/testing"
	"github.com/google/go-cmp/cmp"

	"github.com/bookshelf-gql/bookshelf/internal/book"
	"github.com/bookshelf-gql/bookshelf/internal/config"
	"github.com/bookshelf-gql/bookshelf/internal/log"
	"github.com/bookshelf-gql/bookshelf/server"
)

func newDataSources(t *testing.T) (context.Context, map[string]DataSource) {
	t.Helper()

	ctx := context.Background()
	ctx = log.WithLogger(ctx, testlogr.NewTestLogger(t))

	es, err := server.NewExecutableSchema(ctx, &server.ExecutableSchemaConfig{
		Catalog: book.NewFixtureCatalog(time.UnixMilli(1520139967891)),
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(server.NewHandler(ctx, es, config.Default()))
	t.Cleanup(ts.Close)

	return ctx, map[string]DataSource{
		"local":  &LocalDataSource{ExecutableSchema: es},
		"remote": &RemoteDataSource{URL: ts.URL + "/graphql", Client: ts.Client()},
	}
}

func TestDataSource_Process(t *testing.T) {
	ctx, dataSources := newDataSources(t)

	for name, ds := range dataSources {
		ds := ds
		t.Run(name, func(t *testing.T) {
			resp := ds.Process(ctx, &Request{
				Query:         `query ByDate($date: Date) { bookByDate(date: $date) { title publishDate } }`,
				OperationName: "ByDate",
				Variables:     map[string]interface{}{"date": json.Number("1520139967891")},
			})
			if len(resp.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", resp.Errors)
			}

			var data map[string]interface{}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				t.Fatal(err)
			}
			expected := map[string]interface{}{
				"bookByDate": []interface{}{
					map[string]interface{}{"title": "Harry Potter and the Sorcerer's stone", "publishDate": float64(1520139967891)},
					map[string]interface{}{"title": "Jurassic Park", "publishDate": float64(1520139967891)},
				},
			}
			if diff := cmp.Diff(expected, data); diff != "" {
				t.Errorf("unexpected data (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDataSource_ValidationError(t *testing.T) {
	ctx, dataSources := newDataSources(t)

	for name, ds := range dataSources {
		ds := ds
		t.Run(name, func(t *testing.T) {
			resp := ds.Process(ctx, &Request{
				Query: `{ bookByDate(date: true) { title } }`,
			})
			if len(resp.Errors) != 1 {
				t.Fatalf("unexpected errors: %v", resp.Errors)
			}
		})
	}
}

func TestRemoteDataSource_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	ds := &RemoteDataSource{URL: ts.URL}
	resp := ds.Process(context.Background(), &Request{Query: `{ books { title } }`})
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "unexpected response code: 410" {
		t.Errorf("unexpected errors: %v", resp.Errors)
	}
}
