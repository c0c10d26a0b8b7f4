package resolver

import (
	"context"
	"time"

	"github.com/bookshelf-gql/bookshelf/internal/book"
	"github.com/bookshelf-gql/bookshelf/internal/log"
)

// Resolver produces the values of the bookshelf schema fields.
// It only reads the catalog, so one Resolver serves concurrent requests.
type Resolver struct {
	catalog          *book.Catalog
	ignoreDateFilter bool
}

type Option func(r *Resolver)

// WithIgnoreDateFilter makes bookByDate return every book regardless of its argument.
func WithIgnoreDateFilter(ignore bool) Option {
	return func(r *Resolver) {
		r.ignoreDateFilter = ignore
	}
}

func NewResolver(catalog *book.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Books is the resolver for the books field.
func (r *Resolver) Books(ctx context.Context) ([]book.Book, error) {
	return r.catalog.All(), nil
}

// BookByDate is the resolver for the bookByDate field.
// Books match when their publish date equals date to the millisecond.
// A nil date matches every book.
func (r *Resolver) BookByDate(ctx context.Context, date *time.Time) ([]book.Book, error) {
	books := r.catalog.All()
	if r.ignoreDateFilter || date == nil {
		return books, nil
	}

	want := date.UnixMilli()
	matched := make([]book.Book, 0, len(books))
	for _, b := range books {
		if b.PublishDate.UnixMilli() == want {
			matched = append(matched, b)
		}
	}

	log.FromContext(ctx).V(2).Info("filtered books by date", "date", want, "matched", len(matched))

	return matched, nil
}
