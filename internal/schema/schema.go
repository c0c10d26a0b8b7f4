package schema

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

const sourceName = "schema.graphqls"

//go:embed schema.graphqls
var sdl string

// SDL returns the bookshelf type definitions.
func SDL() string {
	return sdl
}

// Load parses and validates the bookshelf schema together with the built-in prelude.
func Load() (*ast.Schema, error) {
	return LoadSDL(sourceName, sdl)
}

func LoadSDL(name, input string) (*ast.Schema, error) {
	schemaDoc, gErr := parser.ParseSchemas(
		validator.Prelude,
		&ast.Source{
			Name:    name,
			Input:   input,
			BuiltIn: false,
		},
	)
	if gErr != nil {
		return nil, gErr
	}

	schema, gErr := validator.ValidateSchemaDocument(schemaDoc)
	if gErr != nil {
		return nil, gErr
	}

	return schema, nil
}
