package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	testlogr "github.com/go-logr/logr/testing"
	"github.com/google/go-cmp/cmp"

	"github.com/bookshelf-gql/bookshelf/internal/book"
	"github.com/bookshelf-gql/bookshelf/internal/config"
	"github.com/bookshelf-gql/bookshelf/internal/log"
	"github.com/bookshelf-gql/bookshelf/server"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQueryCmd(t *testing.T) {
	out, err := runCmd(t, "query", "--env-file", "", `{ books { title author } }`)
	if err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Data struct {
			Books []struct {
				Title  string `json:"title"`
				Author string `json:"author"`
			} `json:"books"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}

	var authors []string
	for _, b := range resp.Data.Books {
		authors = append(authors, b.Author)
	}
	if diff := cmp.Diff([]string{"J.K. Rowling", "Michael Crichton"}, authors); diff != "" {
		t.Errorf("unexpected authors (-want +got):\n%s", diff)
	}
}

func TestQueryCmd_Variables(t *testing.T) {
	out, err := runCmd(t,
		"query", "--env-file", "", "--ignore-date-filter",
		"--variables", `{"date": 0}`,
		"--operation-name", "ByDate",
		"--output", "yaml",
		`query All { books { title } } query ByDate($date: Date) { bookByDate(date: $date) { title } }`,
	)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "bookByDate:") || !strings.Contains(out, "title: Jurassic Park") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestQueryCmd_Endpoint(t *testing.T) {
	ctx := log.WithLogger(context.Background(), testlogr.NewTestLogger(t))
	es, err := server.NewExecutableSchema(ctx, &server.ExecutableSchemaConfig{
		Catalog: book.NewFixtureCatalog(time.UnixMilli(86400000)),
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.NewHandler(ctx, es, config.Default()))
	defer ts.Close()

	out, err := runCmd(t, "query", "--env-file", "", "--endpoint", ts.URL+"/graphql", `{ bookByDate(date: 86400000) { publishDate } }`)
	if err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Data struct {
			BookByDate []struct {
				PublishDate int64 `json:"publishDate"`
			} `json:"bookByDate"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.BookByDate) != 2 || resp.Data.BookByDate[0].PublishDate != 86400000 {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestQueryCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing query", args: []string{"query"}},
		{name: "bad variables", args: []string{"query", "--variables", "{", "{ books { title } }"}},
		{name: "bad output", args: []string{"query", "--output", "xml", "{ books { title } }"}},
		{name: "bad verbosity", args: []string{"query", "--verbosity", "-1", "{ books { title } }"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, append(tt.args[:1:1], append([]string{"--env-file", ""}, tt.args[1:]...)...)...)
			if err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSchemaCmd(t *testing.T) {
	out, err := runCmd(t, "schema")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "books:") > strings.Index(out, "bookByDate(") {
		t.Errorf("fields should keep their declared order:\n%s", out)
	}

	out, err = runCmd(t, "schema", "--sort")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(out, "bookByDate(") > strings.Index(out, "books:") {
		t.Errorf("fields should be sorted:\n%s", out)
	}
}
