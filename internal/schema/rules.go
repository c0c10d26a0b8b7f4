package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/bookshelf-gql/bookshelf/internal/scalars"
)

// gqlparser skips custom scalars in ValuesOfCorrectType, so inline literals
// of our scalars are checked here. Variables are coerced at execution time.
func init() {
	validator.AddRule("CustomScalarLiterals", func(observers *validator.Events, addError validator.AddErrFunc) {
		observers.OnValue(func(walker *validator.Walker, value *ast.Value) {
			checkCustomScalarLiteral(scalars.Default, value, addError)
		})
	})
}

func checkCustomScalarLiteral(coercers scalars.Map, value *ast.Value, addError validator.AddErrFunc) {
	if value == nil || value.Definition == nil || value.Definition.Kind != ast.Scalar {
		return
	}
	switch value.Kind {
	case ast.Variable, ast.NullValue:
		return
	case ast.ListValue:
		// children are visited on their own
		if value.ExpectedType != nil && value.ExpectedType.Elem != nil {
			return
		}
	}

	coercer := coercers.ForName(value.Definition.Name)
	if coercer == nil {
		return
	}
	if _, err := coercer.ParseLiteral(value); err != nil {
		addError(
			validator.Message(`Expected value of type "%s", found %s; %s`, expectedTypeName(value), value.String(), err.Error()),
			validator.At(value.Position),
		)
	}
}

func expectedTypeName(value *ast.Value) string {
	if value.ExpectedType != nil {
		return value.ExpectedType.String()
	}
	return value.Definition.Name
}
