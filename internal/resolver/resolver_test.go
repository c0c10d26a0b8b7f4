package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/go-cmp/cmp"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/bookshelf-gql/bookshelf/internal/book"
)

var (
	sorcerersStone = time.Date(1997, 6, 26, 0, 0, 0, 0, time.UTC)
	jurassicPark   = time.Date(1990, 11, 20, 0, 0, 0, 0, time.UTC)
)

func newTestCatalog() *book.Catalog {
	return book.NewCatalog(
		book.Book{Title: "Harry Potter and the Sorcerer's stone", Author: "J.K. Rowling", PublishDate: sorcerersStone},
		book.Book{Title: "Jurassic Park", Author: "Michael Crichton", PublishDate: jurassicPark},
	)
}

func titles(books []book.Book) []string {
	ret := make([]string, 0, len(books))
	for _, b := range books {
		ret = append(ret, b.Title)
	}
	return ret
}

func TestResolver_Books(t *testing.T) {
	r := NewResolver(book.NewFixtureCatalog(time.Now()))

	books, err := r.Books(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Harry Potter and the Sorcerer's stone", "Jurassic Park"}
	if diff := cmp.Diff(want, titles(books)); diff != "" {
		t.Errorf("unexpected books (-want +got):\n%s", diff)
	}
}

func TestResolver_BookByDate(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(newTestCatalog())

	unknown := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	sameMilli := sorcerersStone.Add(999 * time.Microsecond)

	tests := []struct {
		name string
		date *time.Time
		want []string
	}{
		{"match first", &sorcerersStone, []string{"Harry Potter and the Sorcerer's stone"}},
		{"match second", &jurassicPark, []string{"Jurassic Park"}},
		{"millisecond precision", &sameMilli, []string{"Harry Potter and the Sorcerer's stone"}},
		{"no match", &unknown, []string{}},
		{"no date", nil, []string{"Harry Potter and the Sorcerer's stone", "Jurassic Park"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := r.BookByDate(ctx, tt.date)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, titles(books)); diff != "" {
				t.Errorf("unexpected books (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolver_BookByDate_IgnoreDateFilter(t *testing.T) {
	r := NewResolver(newTestCatalog(), WithIgnoreDateFilter(true))

	unknown := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	books, err := r.BookByDate(context.Background(), &unknown)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Harry Potter and the Sorcerer's stone", "Jurassic Park"}
	if diff := cmp.Diff(want, titles(books)); diff != "" {
		t.Errorf("unexpected books (-want +got):\n%s", diff)
	}
}

func fieldContext(object, field string) context.Context {
	return graphql.WithFieldContext(context.Background(), &graphql.FieldContext{
		Object: object,
		Field: graphql.CollectedField{
			Field: &ast.Field{Name: field, Alias: field},
		},
	})
}

func TestResolver_ResolveField(t *testing.T) {
	r := NewResolver(newTestCatalog())

	result, gErr := r.ResolveField(fieldContext("Query", "bookByDate"), nil, map[string]interface{}{"date": jurassicPark}, nil)
	if gErr != nil {
		t.Fatal(gErr)
	}
	books, ok := result.([]book.Book)
	if !ok {
		t.Fatalf("unexpected result type: %T", result)
	}
	if diff := cmp.Diff([]string{"Jurassic Park"}, titles(books)); diff != "" {
		t.Errorf("unexpected books (-want +got):\n%s", diff)
	}

	source := books[0]
	for field, want := range map[string]interface{}{
		"title":       "Jurassic Park",
		"author":      "Michael Crichton",
		"publishDate": jurassicPark,
	} {
		got, gErr := r.ResolveField(fieldContext("Book", field), source, nil, nil)
		if gErr != nil {
			t.Fatal(gErr)
		}
		if got != want {
			t.Errorf("Book.%s: got %v, want %v", field, got, want)
		}
	}
}

func TestResolver_ResolveField_Errors(t *testing.T) {
	r := NewResolver(newTestCatalog())

	tests := []struct {
		name   string
		ctx    context.Context
		source interface{}
		args   map[string]interface{}
	}{
		{"unknown type", fieldContext("Mutation", "addBook"), nil, nil},
		{"unknown query field", fieldContext("Query", "authors"), nil, nil},
		{"unknown book field", fieldContext("Book", "isbn"), book.Book{}, nil},
		{"source is not a book", fieldContext("Book", "title"), "Jurassic Park", nil},
		{"date is not coerced", fieldContext("Query", "bookByDate"), nil, map[string]interface{}{"date": int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, gErr := r.ResolveField(tt.ctx, tt.source, tt.args, nil)
			if gErr == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
