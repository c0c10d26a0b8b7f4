package utils

import (
	"testing"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
)

func TestIsNil(t *testing.T) {
	var nilTime *time.Time
	var nilSlice []string
	now := time.Now()

	tests := []struct {
		value interface{}
		want  bool
	}{
		{nil, true},
		{nilTime, true},
		{nilSlice, true},
		{&now, false},
		{now, false},
		{"", false},
		{[]string{}, false},
	}
	for _, tt := range tests {
		if got := IsNil(tt.value); got != tt.want {
			t.Errorf("IsNil(%#v): got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsNilSlice(t *testing.T) {
	var nilSlice []string
	var nilMap map[string]interface{}

	tests := []struct {
		value interface{}
		want  bool
	}{
		{nil, false},
		{nilSlice, true},
		{[]string{}, false},
		{nilMap, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsNilSlice(tt.value); got != tt.want {
			t.Errorf("IsNilSlice(%#v): got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestKinds(t *testing.T) {
	scalar := &ast.Definition{Kind: ast.Scalar, Name: "Date"}
	object := &ast.Definition{Kind: ast.Object, Name: "Book"}
	union := &ast.Definition{Kind: ast.Union, Name: "SearchResult"}

	if !IsLeafType(scalar) || IsLeafType(object) || IsLeafType(nil) {
		t.Error("IsLeafType")
	}
	if !IsObjectType(object) || IsObjectType(scalar) || IsObjectType(nil) {
		t.Error("IsObjectType")
	}
	if !IsAbstractType(union) || IsAbstractType(object) || IsAbstractType(nil) {
		t.Error("IsAbstractType")
	}
	if !IsObjectLike(map[string]interface{}{}) || IsObjectLike("book") {
		t.Error("IsObjectLike")
	}
}
