package execute

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// getArgumentValues prepares the arguments of a field. Inline literals and
// variables of custom scalars go through the scalar's Coercer, everything else
// keeps the value gqlparser gives us.
func getArgumentValues(exeContext *ExecutionContext, fieldDef *ast.FieldDefinition, field *ast.Field) (map[string]interface{}, *gqlerror.Error) {
	args := make(map[string]interface{}, len(fieldDef.Arguments))

	for _, argDef := range fieldDef.Arguments {
		var argNode *ast.Argument
		if field != nil {
			argNode = field.Arguments.ForName(argDef.Name)
		}

		var (
			value interface{}
			err   error
		)
		switch {
		case argNode == nil || argNode.Value == nil:
			if argDef.DefaultValue == nil {
				continue
			}
			value, err = coerceLiteral(exeContext, argDef.Type, argDef.DefaultValue)

		case argNode.Value.Kind == ast.Variable:
			raw, ok := exeContext.VariableValues[argNode.Value.Raw]
			if !ok {
				if argDef.DefaultValue == nil {
					continue
				}
				value, err = coerceLiteral(exeContext, argDef.Type, argDef.DefaultValue)
			} else {
				value, err = coerceVariable(exeContext, argDef.Type, raw)
			}

		default:
			value, err = coerceLiteral(exeContext, argDef.Type, argNode.Value)
		}
		if err != nil {
			return nil, gqlerror.Errorf(`argument "%s" of type "%s" has invalid value: %s`, argDef.Name, argDef.Type.String(), err.Error())
		}

		args[argDef.Name] = value
	}

	return args, nil
}

// coerceVariable converts an already validated variable value into the
// representation resolvers expect.
func coerceVariable(exeContext *ExecutionContext, typ *ast.Type, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	if typ.Elem != nil {
		items, ok := raw.([]interface{})
		if !ok {
			item, err := coerceVariable(exeContext, typ.Elem, raw)
			if err != nil {
				return nil, err
			}
			return []interface{}{item}, nil
		}

		out := make([]interface{}, len(items))
		for i, item := range items {
			v, err := coerceVariable(exeContext, typ.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	if def := exeContext.Schema.Types[typ.NamedType]; def != nil && def.Kind == ast.InputObject {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected an object for %s, got %T", def.Name, raw)
		}
		out := make(map[string]interface{}, len(obj))
		for _, fieldDef := range def.Fields {
			v, ok := obj[fieldDef.Name]
			if !ok {
				continue
			}
			coerced, err := coerceVariable(exeContext, fieldDef.Type, v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fieldDef.Name, err)
			}
			out[fieldDef.Name] = coerced
		}
		return out, nil
	}

	if coercer := exeContext.Scalars.ForName(typ.NamedType); coercer != nil {
		return coercer.ParseValue(raw)
	}

	return raw, nil
}

// coerceLiteral converts a value written in the document, or a default value
// from the schema, into the representation resolvers expect.
func coerceLiteral(exeContext *ExecutionContext, typ *ast.Type, value *ast.Value) (interface{}, error) {
	switch value.Kind {
	case ast.NullValue:
		return nil, nil
	case ast.Variable:
		raw, ok := exeContext.VariableValues[value.Raw]
		if !ok {
			return nil, nil
		}
		return coerceVariable(exeContext, typ, raw)
	}

	if typ.Elem != nil {
		if value.Kind != ast.ListValue {
			item, err := coerceLiteral(exeContext, typ.Elem, value)
			if err != nil {
				return nil, err
			}
			return []interface{}{item}, nil
		}

		out := make([]interface{}, 0, len(value.Children))
		for i, child := range value.Children {
			item, err := coerceLiteral(exeContext, typ.Elem, child.Value)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, item)
		}
		return out, nil
	}

	if def := exeContext.Schema.Types[typ.NamedType]; def != nil && def.Kind == ast.InputObject && value.Kind == ast.ObjectValue {
		out := make(map[string]interface{}, len(def.Fields))
		for _, fieldDef := range def.Fields {
			child := value.Children.ForName(fieldDef.Name)
			if child == nil {
				child = fieldDef.DefaultValue
			}
			if child == nil {
				continue
			}
			v, err := coerceLiteral(exeContext, fieldDef.Type, child)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fieldDef.Name, err)
			}
			out[fieldDef.Name] = v
		}
		return out, nil
	}

	if coercer := exeContext.Scalars.ForName(typ.NamedType); coercer != nil {
		return coercer.ParseLiteral(value)
	}

	return value.Value(exeContext.VariableValues)
}
