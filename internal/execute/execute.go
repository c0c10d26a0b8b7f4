package execute

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/bookshelf-gql/bookshelf/internal/log"
	"github.com/bookshelf-gql/bookshelf/internal/scalars"
	"github.com/bookshelf-gql/bookshelf/internal/utils"
)

// NOTE: this is a schema driven executor. gqlgen normally generates one per
// schema, here the field values come from a FieldResolver instead.

type ExecutionContext struct {
	Schema         *ast.Schema
	Fragments      ast.FragmentDefinitionList
	RootValue      interface{}
	ContextValue   map[string]interface{}
	Operation      *ast.OperationDefinition
	VariableValues map[string]interface{}
	FieldResolver  FieldResolver
	TypeResolver   TypeResolver
	Scalars        scalars.Map

	mu     sync.Mutex
	Errors gqlerror.List
}

type ExecutionArgs struct {
	Schema         *ast.Schema
	Document       *ast.QueryDocument
	RootValue      interface{}            // optional
	ContextValue   map[string]interface{} // optional
	VariableValues map[string]interface{} // optional
	OperationName  string                 // optional
	FieldResolver  FieldResolver          // optional
	TypeResolver   TypeResolver           // optional
	Scalars        scalars.Map            // optional
}

var _ FieldResolver = defaultFieldResolver

// FieldResolver produces the value of the field found in the FieldContext of ctx.
type FieldResolver func(ctx context.Context, source interface{}, args, contextValue map[string]interface{}) (interface{}, *gqlerror.Error)

var _ TypeResolver = defaultTypeResolver

// TypeResolver names the object type of a value returned for an abstract type.
type TypeResolver func(ctx context.Context, value interface{}, contextValue map[string]interface{}, schema *ast.Schema, abstractType *ast.Type) string

// Execute implements the "Executing requests" section of the GraphQL specification.
//
// ctx must carry a graphql.OperationContext for the document.
//
// If errors are encountered while executing a field, only that field and its
// descendants are omitted and sibling fields are still executed. Those errors
// end up in the response. The returned error is reserved for invalid arguments.
func Execute(ctx context.Context, args *ExecutionArgs) (*graphql.Response, *gqlerror.Error) {
	gErr := assertValidExecutionArguments(args.Schema, args.Document)
	if gErr != nil {
		return nil, gErr
	}

	// If a valid execution context cannot be created due to incorrect arguments,
	// a "Response" with only errors is returned.
	exeContext, gErrs := buildExecutionContext(args)
	if len(gErrs) != 0 {
		return &graphql.Response{
			Errors: gErrs,
		}, nil
	}

	data, gErr := executeOperation(ctx, exeContext, exeContext.Operation, exeContext.RootValue)
	if gErr != nil {
		return nil, gErr
	}

	resp := buildResponse(exeContext, data)
	log.FromContext(ctx).V(2).Info("operation executed", "operation", exeContext.Operation.Name, "errors", len(resp.Errors))

	return resp, nil
}

func buildResponse(exeContext *ExecutionContext, data graphql.Marshaler) *graphql.Response {
	var buf bytes.Buffer
	data.MarshalGQL(&buf)

	return &graphql.Response{
		Errors: exeContext.Errors,
		Data:   buf.Bytes(),
	}
}

// Essential assertions before executing to provide developer feedback for
// improper use of the executor.
func assertValidExecutionArguments(schema *ast.Schema, document *ast.QueryDocument) *gqlerror.Error {
	if schema == nil {
		return gqlerror.Errorf("must provide schema")
	}
	if document == nil {
		return gqlerror.Errorf("must provide document")
	}

	return nil
}

func buildExecutionContext(args *ExecutionArgs) (*ExecutionContext, gqlerror.List) {
	operation := args.Document.Operations.ForName(args.OperationName)
	if operation == nil {
		if args.OperationName != "" {
			return nil, gqlerror.List{gqlerror.Errorf(`unknown operation named "%s"`, args.OperationName)}
		}
		return nil, gqlerror.List{gqlerror.Errorf("must provide an operation")}
	}

	coercedVariableValues, err := validator.VariableValues(args.Schema, operation, args.VariableValues)
	if err != nil {
		return nil, gqlerror.List{toGQLError(err)}
	}

	fieldResolver := args.FieldResolver
	if fieldResolver == nil {
		fieldResolver = defaultFieldResolver
	}
	typeResolver := args.TypeResolver
	if typeResolver == nil {
		typeResolver = defaultTypeResolver
	}

	return &ExecutionContext{
		Schema:         args.Schema,
		Fragments:      args.Document.Fragments,
		RootValue:      args.RootValue,
		ContextValue:   args.ContextValue,
		Operation:      operation,
		VariableValues: coercedVariableValues,
		FieldResolver:  fieldResolver,
		TypeResolver:   typeResolver,
		Scalars:        args.Scalars,
	}, nil
}

func (exeContext *ExecutionContext) addError(gErr *gqlerror.Error) {
	exeContext.mu.Lock()
	defer exeContext.mu.Unlock()
	exeContext.Errors = append(exeContext.Errors, gErr)
}

func toGQLError(err error) *gqlerror.Error {
	var gErr *gqlerror.Error
	if errors.As(err, &gErr) {
		return gErr
	}
	return gqlerror.Wrap(err)
}

// Implements the "Executing operations" section of the spec.
func executeOperation(ctx context.Context, exeContext *ExecutionContext, operation *ast.OperationDefinition, rootValue interface{}) (graphql.Marshaler, *gqlerror.Error) {
	if !graphql.HasOperationContext(ctx) {
		panic("ctx doesn't have OperationContext")
	}

	var typ *ast.Definition
	switch operation.Operation {
	case ast.Query:
		typ = exeContext.Schema.Query
		if typ == nil {
			return nil, gqlerror.ErrorPosf(operation.Position, "schema does not define the required query root type")
		}
	case ast.Mutation:
		typ = exeContext.Schema.Mutation
		if typ == nil {
			return nil, gqlerror.ErrorPosf(operation.Position, "schema is not configured for mutations")
		}
	case ast.Subscription:
		typ = exeContext.Schema.Subscription
		if typ == nil {
			return nil, gqlerror.ErrorPosf(operation.Position, "schema is not configured for subscriptions")
		}
	default:
		return nil, gqlerror.ErrorPosf(operation.Position, "can only have query, mutation and subscription operations")
	}

	fields := graphql.CollectFields(graphql.GetOperationContext(ctx), operation.SelectionSet, satisfies(typ))
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{
		Object: typ.Name,
	})

	var (
		result graphql.Marshaler
		gErr   *gqlerror.Error
	)
	if operation.Operation == ast.Mutation {
		result, gErr = executeFieldsSerially(ctx, exeContext, typ, rootValue, fields)
	} else {
		result, gErr = executeFields(ctx, exeContext, typ, rootValue, fields)
	}

	// Errors from sub-fields of a NonNull type may propagate to the top level,
	// at which point we still log the error and null the parent field, which
	// in this case is the entire response.
	if gErr != nil {
		exeContext.addError(gErr)
		return graphql.Null, nil
	}

	return result, nil
}

// Implements the "Executing selection sets" section of the spec
// for fields that must be executed serially.
func executeFieldsSerially(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, sourceValue interface{}, fields []graphql.CollectedField) (graphql.Marshaler, *gqlerror.Error) {
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		data, gErr := executeField(ctx, exeContext, parentType, sourceValue, field)
		if gErr != nil {
			return graphql.Null, gErr
		}
		out.Values[i] = data
	}

	return out, nil
}

// Implements the "Executing selection sets" section of the spec
// for fields that may be executed in parallel.
func executeFields(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, sourceValue interface{}, fields []graphql.CollectedField) (graphql.Marshaler, *gqlerror.Error) {
	out := graphql.NewFieldSet(fields)
	gErrs := make([]*gqlerror.Error, len(fields))

	var wg sync.WaitGroup
	wg.Add(len(fields))
	for i, field := range fields {
		i, field := i, field
		go func() {
			defer wg.Done()
			out.Values[i], gErrs[i] = executeField(ctx, exeContext, parentType, sourceValue, field)
		}()
	}
	wg.Wait()

	for _, gErr := range gErrs {
		if gErr != nil {
			return graphql.Null, gErr
		}
	}

	return out, nil
}

// Implements the "Executing field" section of the spec
// In particular, this function figures out the value that the field returns by
// calling its resolve function, then calls completeValue to serialize scalars,
// or execute the sub-selection-set for objects.
//
// A non nil error means the field is non-null and the error must propagate to the parent.
func executeField(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, source interface{}, field graphql.CollectedField) (completed graphql.Marshaler, gErr *gqlerror.Error) {
	fc := &graphql.FieldContext{
		Object: parentType.Name,
		Field:  field,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	fieldDef := field.Definition
	if fieldDef == nil {
		return graphql.Null, gqlerror.ErrorPathf(fc.Path(), `cannot query field "%s" on type "%s"`, field.Name, parentType.Name)
	}
	returnType := fieldDef.Type

	defer func() {
		if r := recover(); r != nil {
			err := graphql.DefaultRecover(ctx, r)
			completed, gErr = handleFieldError(exeContext, returnType, gqlerror.WrapPath(fc.Path(), err))
		}
	}()

	args, gErr := getArgumentValues(exeContext, fieldDef, field.Field)
	if gErr != nil {
		gErr.Path = fc.Path()
		return handleFieldError(exeContext, returnType, gErr)
	}
	fc.Args = args

	result, gErr := resolveField(ctx, exeContext, parentType, source, args)
	if gErr != nil {
		return handleFieldError(exeContext, returnType, gErr)
	}

	completed, gErr = completeValue(ctx, exeContext, returnType, field, result)
	if gErr != nil {
		return handleFieldError(exeContext, returnType, gErr)
	}

	return completed, nil
}

func resolveField(ctx context.Context, exeContext *ExecutionContext, parentType *ast.Definition, source interface{}, args map[string]interface{}) (interface{}, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	switch fc.Field.Name {
	case "__typename":
		return parentType.Name, nil
	case "__schema", "__type":
		if parentType == exeContext.Schema.Query {
			return resolveMetaField(ctx, exeContext, fc.Field.Name, args)
		}
	}
	if isIntrospectionType(parentType) {
		return resolveIntrospectionField(ctx, source, fc.Field.Name, args)
	}

	// The resolve function's last argument is a context value that is provided
	// to every resolve function within an execution.
	return exeContext.FieldResolver(ctx, source, args, exeContext.ContextValue)
}

// Nullable fields swallow their errors and become null. Non-null fields hand
// the error to the parent.
func handleFieldError(exeContext *ExecutionContext, returnType *ast.Type, gErr *gqlerror.Error) (graphql.Marshaler, *gqlerror.Error) {
	if returnType.NonNull {
		return graphql.Null, gErr
	}
	exeContext.addError(gErr)
	return graphql.Null, nil
}

// Implements the instructions for completeValue as defined in the
// "Field entries" section of the spec.
//
// If the field type is Non-Null, then this recursively completes the value
// for the inner type. It returns a field error if that completion returns null,
// as per the "Nullability" section of the spec.
//
// If the field type is a List, then this recursively completes the value
// for the inner type on each item in the list.
//
// If the field type is a Scalar or Enum, ensures the completed value is a legal
// value of the type by calling the scalar's Serialize.
//
// If the field is an abstract type, determine the runtime type of the value
// and then complete based on that type
//
// Otherwise, the field type expects a sub-selection set, and will complete the
// value by executing all sub-selections.
func completeValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, fieldNode graphql.CollectedField, result interface{}) (graphql.Marshaler, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	if err, ok := result.(error); ok && err != nil {
		return graphql.Null, gqlerror.WrapPath(fc.Path(), err)
	}

	if returnType.NonNull {
		// gqlgen leaves slices such as introspection.Field.Args nil when empty.
		if returnType.Elem != nil && utils.IsNilSlice(result) {
			return graphql.Array{}, nil
		}

		copied := *returnType
		copied.NonNull = false
		completed, gErr := completeValue(
			ctx,
			exeContext,
			&copied,
			fieldNode,
			result,
		)
		if gErr != nil {
			return graphql.Null, gErr
		}
		if completed == graphql.Null {
			return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "cannot return null for non-nullable field %s.%s", fc.Object, fc.Field.Name)
		}
		return completed, nil
	}

	if utils.IsNil(result) {
		return graphql.Null, nil
	}

	if returnType.Elem != nil {
		return completeListValue(
			ctx,
			exeContext,
			returnType,
			fieldNode,
			result,
		)
	}

	def := exeContext.Schema.Types[returnType.Name()]

	if utils.IsLeafType(def) {
		return completeLeafValue(ctx, exeContext, returnType, result)
	}

	if utils.IsAbstractType(def) {
		return completeAbstractValue(
			ctx,
			exeContext,
			returnType,
			fieldNode,
			result,
		)
	}

	if utils.IsObjectType(def) {
		return completeObjectValue(
			ctx,
			exeContext,
			returnType,
			fieldNode,
			result,
		)
	}

	return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "cannot complete value of unexpected output type: %s", returnType.String())
}

// Complete a list value by completing each item in the list with the
// inner type
func completeListValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, fieldNode graphql.CollectedField, result interface{}) (graphql.Marshaler, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	resultRV := reflect.ValueOf(result)
	if resultRV.Kind() != reflect.Slice && resultRV.Kind() != reflect.Array {
		return graphql.Null, gqlerror.ErrorPathf(fc.Path(), `expected slice, but did not find one for field "%s.%s"`, fc.Object, fc.Field.Name)
	}

	itemType := returnType.Elem

	ret := make(graphql.Array, resultRV.Len())
	gErrs := make([]*gqlerror.Error, resultRV.Len())

	var wg sync.WaitGroup
	wg.Add(resultRV.Len())
	for index := 0; index < resultRV.Len(); index++ {
		index := index
		item := resultRV.Index(index).Interface()

		go func() {
			defer wg.Done()

			ctx := graphql.WithFieldContext(ctx, &graphql.FieldContext{
				Object: fc.Object,
				Field:  fc.Field,
				Index:  &index,
				Result: item,
			})

			completedItem, gErr := completeValue(
				ctx,
				exeContext,
				itemType,
				fieldNode,
				item,
			)
			if gErr != nil {
				completedItem, gErr = handleFieldError(exeContext, itemType, gErr)
			}

			ret[index], gErrs[index] = completedItem, gErr
		}()
	}
	wg.Wait()

	for _, gErr := range gErrs {
		if gErr != nil {
			return graphql.Null, gErr
		}
	}

	return ret, nil
}

// Complete a Scalar or Enum by serializing to a valid value.
func completeLeafValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, result interface{}) (graphql.Marshaler, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	if coercer := exeContext.Scalars.ForName(returnType.Name()); coercer != nil {
		serialized, err := coercer.Serialize(result)
		if err != nil {
			return graphql.Null, gqlerror.WrapPath(fc.Path(), err)
		}
		result = serialized
	}

	switch result := result.(type) {
	case graphql.Marshaler:
		return result, nil
	case bool:
		return graphql.MarshalBoolean(result), nil
	case float64:
		return graphql.MarshalFloat(result), nil
	case int:
		return graphql.MarshalInt(result), nil
	case int64:
		return graphql.MarshalInt64(result), nil
	case int32:
		return graphql.MarshalInt32(result), nil
	case string:
		return graphql.MarshalString(result), nil
	case *string:
		return graphql.MarshalString(*result), nil
	case time.Time:
		return graphql.MarshalTime(result), nil
	default:
		return graphql.Null, gqlerror.ErrorPathf(fc.Path(), "unsupported leaf type: %T", result)
	}
}

// Complete a value of an abstract type by determining the runtime object type
// of that value, then complete the value for that type.
func completeAbstractValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, fieldNode graphql.CollectedField, result interface{}) (graphql.Marshaler, *gqlerror.Error) {
	resolveTypeFn := exeContext.TypeResolver
	contextValue := exeContext.ContextValue

	runtimeType, gErr := ensureValidRuntimeType(
		ctx,
		resolveTypeFn(ctx, result, contextValue, exeContext.Schema, returnType),
		exeContext,
		returnType,
	)
	if gErr != nil {
		return graphql.Null, gErr
	}

	return completeObjectValue(
		ctx,
		exeContext,
		runtimeType,
		fieldNode,
		result,
	)
}

func ensureValidRuntimeType(ctx context.Context, runtimeTypeName string, exeContext *ExecutionContext, returnType *ast.Type) (*ast.Type, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)

	if runtimeTypeName == "" {
		return nil, gqlerror.ErrorPathf(
			fc.Path(),
			`abstract type "%s" must resolve to an Object type at runtime for field "%s.%s"`,
			returnType.Name(),
			fc.Object,
			fc.Field.Name,
		)
	}

	runtimeType := exeContext.Schema.Types[runtimeTypeName]
	if runtimeType == nil {
		return nil, gqlerror.ErrorPathf(
			fc.Path(),
			`abstract type "%s" was resolved to a type "%s" that does not exist inside the schema`,
			returnType.Name(),
			runtimeTypeName,
		)
	}

	if runtimeType.Kind != ast.Object {
		return nil, gqlerror.ErrorPathf(
			fc.Path(),
			`abstract type "%s" was resolved to a non-object type "%s"`,
			returnType.Name(),
			runtimeTypeName,
		)
	}

	if !utils.IsTypeDefSubTypeOf(exeContext.Schema, runtimeType, exeContext.Schema.Types[returnType.Name()]) {
		return nil, gqlerror.ErrorPathf(
			fc.Path(),
			`runtime Object type "%s" is not a possible type for "%s"`,
			runtimeType.Name,
			returnType.Name(),
		)
	}

	return ast.NamedType(runtimeType.Name, returnType.Position), nil
}

// Complete an Object value by executing all sub-selections.
func completeObjectValue(ctx context.Context, exeContext *ExecutionContext, returnType *ast.Type, fieldNode graphql.CollectedField, result interface{}) (graphql.Marshaler, *gqlerror.Error) {
	def := exeContext.Schema.Types[returnType.Name()]
	subFieldNodes := graphql.CollectFields(graphql.GetOperationContext(ctx), fieldNode.Selections, satisfies(def))

	return executeFields(ctx, exeContext, def, result, subFieldNodes)
}

func satisfies(def *ast.Definition) []string {
	return append([]string{def.Name}, def.Interfaces...)
}

// If a resolveType function is not given, the `__typename` property of a map
// value names the type.
func defaultTypeResolver(ctx context.Context, value interface{}, contextValue map[string]interface{}, schema *ast.Schema, abstractType *ast.Type) string {
	if utils.IsObjectLike(value) {
		value := value.(map[string]interface{})
		typename, ok := value["__typename"].(string)
		if ok {
			return typename
		}
	}

	return ""
}

// If a resolve function is not given, then a default resolve behavior is used
// which takes the property of the source map of the same name as the field
// and returns it as the result.
func defaultFieldResolver(ctx context.Context, source interface{}, args, contextValue map[string]interface{}) (interface{}, *gqlerror.Error) {
	fc := graphql.GetFieldContext(ctx)
	if fc == nil {
		panic("ctx doesn't have FieldContext")
	}

	if utils.IsObjectLike(source) {
		source := source.(map[string]interface{})
		return source[fc.Field.Name], nil
	}

	return nil, nil
}
