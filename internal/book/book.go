package book

import "time"

type Book struct {
	Title       string
	Author      string
	PublishDate time.Time
}

// Catalog is an ordered, read only list of books.
// It is safe for concurrent use because it never changes after construction.
type Catalog struct {
	books []Book
}

func NewCatalog(books ...Book) *Catalog {
	copied := make([]Book, len(books))
	copy(copied, books)
	return &Catalog{books: copied}
}

// NewFixtureCatalog returns the two seed records. Both are stamped with now.
func NewFixtureCatalog(now time.Time) *Catalog {
	return NewCatalog(
		Book{
			Title:       "Harry Potter and the Sorcerer's stone",
			Author:      "J.K. Rowling",
			PublishDate: now,
		},
		Book{
			Title:       "Jurassic Park",
			Author:      "Michael Crichton",
			PublishDate: now,
		},
	)
}

// All returns the books in insertion order.
// The returned slice is a copy, so callers can't alter the catalog.
func (c *Catalog) All() []Book {
	books := make([]Book, len(c.books))
	copy(books, c.books)
	return books
}

func (c *Catalog) Len() int {
	return len(c.books)
}
