package schema

import (
	"bytes"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// SortLexicographically orders the fields, arguments, enum values, interfaces
// and union members of every type by name. s is modified in place.
func SortLexicographically(s *ast.Schema) *ast.Schema {
	sortArgumentDefinitions := func(argDefs ast.ArgumentDefinitionList) {
		sort.SliceStable(argDefs, func(i, j int) bool {
			return argDefs[i].Name < argDefs[j].Name
		})
	}

	for _, def := range s.Types {
		sort.SliceStable(def.Fields, func(i, j int) bool {
			return def.Fields[i].Name < def.Fields[j].Name
		})
		for _, field := range def.Fields {
			sortArgumentDefinitions(field.Arguments)
		}
		sort.SliceStable(def.EnumValues, func(i, j int) bool {
			return def.EnumValues[i].Name < def.EnumValues[j].Name
		})
		sort.Strings(def.Interfaces)
		sort.Strings(def.Types)
	}
	for _, directive := range s.Directives {
		sortArgumentDefinitions(directive.Arguments)
	}

	return s
}

// Format prints the user defined part of s as SDL.
func Format(s *ast.Schema) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchema(s)
	return buf.String()
}
