package book

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewFixtureCatalog(t *testing.T) {
	now := time.Date(2018, 3, 4, 5, 6, 7, 0, time.UTC)
	catalog := NewFixtureCatalog(now)

	want := []Book{
		{Title: "Harry Potter and the Sorcerer's stone", Author: "J.K. Rowling", PublishDate: now},
		{Title: "Jurassic Park", Author: "Michael Crichton", PublishDate: now},
	}
	if diff := cmp.Diff(want, catalog.All()); diff != "" {
		t.Errorf("unexpected books (-want +got):\n%s", diff)
	}
	if catalog.Len() != 2 {
		t.Errorf("unexpected len: %d", catalog.Len())
	}
}

func TestCatalog_AllIsACopy(t *testing.T) {
	catalog := NewFixtureCatalog(time.Unix(0, 0))

	books := catalog.All()
	books[0].Title = "changed"

	if got := catalog.All()[0].Title; got != "Harry Potter and the Sorcerer's stone" {
		t.Errorf("catalog was mutated through All: %s", got)
	}
	if catalog.Len() != 2 {
		t.Errorf("catalog length changed: %d", catalog.Len())
	}
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	seed := []Book{{Title: "a"}, {Title: "b"}}
	catalog := NewCatalog(seed...)
	seed[0].Title = "z"

	if got := catalog.All()[0].Title; got != "a" {
		t.Errorf("catalog shares backing array with caller: %s", got)
	}
}
