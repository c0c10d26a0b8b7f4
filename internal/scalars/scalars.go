package scalars

import "github.com/vektah/gqlparser/v2/ast"

// Coercer converts the values of a custom scalar between their wire form and
// the representation used by resolvers.
type Coercer interface {
	// ParseValue handles input supplied through query variables.
	ParseValue(raw interface{}) (interface{}, error)
	// ParseLiteral handles input written inline in the query document.
	ParseLiteral(value *ast.Value) (interface{}, error)
	// Serialize converts a resolved value into its wire form.
	Serialize(value interface{}) (interface{}, error)
}

// Map holds coercers by scalar type name.
type Map map[string]Coercer

// Default contains every custom scalar declared by the bookshelf schema.
var Default = Map{
	"Date": Date,
}

func (m Map) ForName(name string) Coercer {
	if m == nil {
		return nil
	}
	return m[name]
}
