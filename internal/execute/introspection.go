package execute

import (
	"context"
	"fmt"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func isIntrospectionType(def *ast.Definition) bool {
	return strings.HasPrefix(def.Name, "__")
}

// resolveMetaField resolves __schema and __type on the query root.
func resolveMetaField(ctx context.Context, exeContext *ExecutionContext, fieldName string, args map[string]interface{}) (interface{}, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	if oc := graphql.GetOperationContext(ctx); oc.DisableIntrospection {
		return nil, gqlerror.ErrorPathf(fc.Path(), "introspection disabled")
	}

	switch fieldName {
	case "__schema":
		return introspection.WrapSchema(exeContext.Schema), nil
	case "__type":
		name, _ := args["name"].(string)
		def := exeContext.Schema.Types[name]
		if def == nil {
			return nil, nil
		}
		return introspection.WrapTypeFromDef(exeContext.Schema, def), nil
	}

	return nil, gqlerror.ErrorPathf(fc.Path(), "unknown meta field %s", fieldName)
}

// resolveIntrospectionField reads a field of one of the introspection wrappers.
func resolveIntrospectionField(ctx context.Context, source interface{}, fieldName string, args map[string]interface{}) (interface{}, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	var (
		result interface{}
		err    error
	)
	switch source := source.(type) {
	case *introspection.Schema:
		result, err = schemaField(source, fieldName)
	case *introspection.Type:
		result, err = typeField(source, fieldName, args)
	case introspection.Type:
		result, err = typeField(&source, fieldName, args)
	case *introspection.Field:
		result, err = fieldField(source, fieldName)
	case introspection.Field:
		result, err = fieldField(&source, fieldName)
	case *introspection.InputValue:
		result, err = inputValueField(source, fieldName)
	case introspection.InputValue:
		result, err = inputValueField(&source, fieldName)
	case *introspection.EnumValue:
		result, err = enumValueField(source, fieldName)
	case introspection.EnumValue:
		result, err = enumValueField(&source, fieldName)
	case *introspection.Directive:
		result, err = directiveField(source, fieldName)
	case introspection.Directive:
		result, err = directiveField(&source, fieldName)
	default:
		err = fmt.Errorf("unexpected introspection value %T", source)
	}
	if err != nil {
		return nil, gqlerror.WrapPath(fc.Path(), err)
	}

	return result, nil
}

func schemaField(s *introspection.Schema, fieldName string) (interface{}, error) {
	switch fieldName {
	case "description":
		return s.Description(), nil
	case "types":
		return s.Types(), nil
	case "queryType":
		return s.QueryType(), nil
	case "mutationType":
		return s.MutationType(), nil
	case "subscriptionType":
		return s.SubscriptionType(), nil
	case "directives":
		return s.Directives(), nil
	}
	return nil, fmt.Errorf("unknown field __Schema.%s", fieldName)
}

func typeField(t *introspection.Type, fieldName string, args map[string]interface{}) (interface{}, error) {
	includeDeprecated, _ := args["includeDeprecated"].(bool)

	switch fieldName {
	case "kind":
		return t.Kind(), nil
	case "name":
		return t.Name(), nil
	case "description":
		return t.Description(), nil
	case "specifiedByURL":
		// only named types carry directives
		if kind := t.Kind(); kind == "LIST" || kind == "NON_NULL" {
			return nil, nil
		}
		return t.SpecifiedByURL(), nil
	case "fields":
		return t.Fields(includeDeprecated), nil
	case "interfaces":
		return t.Interfaces(), nil
	case "possibleTypes":
		return t.PossibleTypes(), nil
	case "enumValues":
		return t.EnumValues(includeDeprecated), nil
	case "inputFields":
		return t.InputFields(), nil
	case "ofType":
		return t.OfType(), nil
	}
	return nil, fmt.Errorf("unknown field __Type.%s", fieldName)
}

func fieldField(f *introspection.Field, fieldName string) (interface{}, error) {
	switch fieldName {
	case "name":
		return f.Name, nil
	case "description":
		return f.Description(), nil
	case "args":
		return f.Args, nil
	case "type":
		return f.Type, nil
	case "isDeprecated":
		return f.IsDeprecated(), nil
	case "deprecationReason":
		return f.DeprecationReason(), nil
	}
	return nil, fmt.Errorf("unknown field __Field.%s", fieldName)
}

func inputValueField(v *introspection.InputValue, fieldName string) (interface{}, error) {
	switch fieldName {
	case "name":
		return v.Name, nil
	case "description":
		return v.Description(), nil
	case "type":
		return v.Type, nil
	case "defaultValue":
		return v.DefaultValue, nil
	}
	return nil, fmt.Errorf("unknown field __InputValue.%s", fieldName)
}

func enumValueField(v *introspection.EnumValue, fieldName string) (interface{}, error) {
	switch fieldName {
	case "name":
		return v.Name, nil
	case "description":
		return v.Description(), nil
	case "isDeprecated":
		return v.IsDeprecated(), nil
	case "deprecationReason":
		return v.DeprecationReason(), nil
	}
	return nil, fmt.Errorf("unknown field __EnumValue.%s", fieldName)
}

func directiveField(d *introspection.Directive, fieldName string) (interface{}, error) {
	switch fieldName {
	case "name":
		return d.Name, nil
	case "description":
		return d.Description(), nil
	case "locations":
		return d.Locations, nil
	case "args":
		return d.Args, nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	}
	return nil, fmt.Errorf("unknown field __Directive.%s", fieldName)
}
