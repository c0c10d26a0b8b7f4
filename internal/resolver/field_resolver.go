package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/bookshelf-gql/bookshelf/internal/book"
)

// ResolveField dispatches a field of the bookshelf schema to its resolver.
// Its signature matches execute.FieldResolver.
func (r *Resolver) ResolveField(ctx context.Context, source interface{}, args, contextValue map[string]interface{}) (interface{}, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)
	if fc == nil {
		panic("ctx doesn't have FieldContext")
	}

	var (
		result interface{}
		err    error
	)
	switch fc.Object {
	case "Query":
		result, err = r.resolveQueryField(ctx, fc.Field.Name, args)
	case "Book":
		result, err = resolveBookField(fc.Field.Name, source)
	default:
		err = fmt.Errorf("no resolver for type %s", fc.Object)
	}
	if err != nil {
		return nil, gqlerror.WrapPath(fc.Path(), err)
	}

	return result, nil
}

func (r *Resolver) resolveQueryField(ctx context.Context, fieldName string, args map[string]interface{}) (interface{}, error) {
	switch fieldName {
	case "books":
		return r.Books(ctx)
	case "bookByDate":
		var date *time.Time
		switch v := args["date"].(type) {
		case nil:
		case time.Time:
			date = &v
		default:
			return nil, fmt.Errorf("argument date must be a Date, got %T", v)
		}
		return r.BookByDate(ctx, date)
	default:
		return nil, fmt.Errorf("no resolver for field Query.%s", fieldName)
	}
}

func resolveBookField(fieldName string, source interface{}) (interface{}, error) {
	var b *book.Book
	switch source := source.(type) {
	case book.Book:
		b = &source
	case *book.Book:
		b = source
	}
	if b == nil {
		return nil, fmt.Errorf("expected a Book, got %T", source)
	}

	switch fieldName {
	case "title":
		return b.Title, nil
	case "author":
		return b.Author, nil
	case "publishDate":
		return b.PublishDate, nil
	default:
		return nil, fmt.Errorf("no resolver for field Book.%s", fieldName)
	}
}
