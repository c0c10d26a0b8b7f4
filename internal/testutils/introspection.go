package testutils

import (
	"encoding/json"
	"fmt"
)

// IntrospectionQuery is the operation GraphiQL sends to build its client side
// schema, as printed by graphql-js getIntrospectionQuery with default options.
const IntrospectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      ...FullType
    }
    directives {
      name
      description
      locations
      args {
        ...InputValue
      }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args {
      ...InputValue
    }
    type {
      ...TypeRef
    }
    isDeprecated
    deprecationReason
  }
  inputFields {
    ...InputValue
  }
  interfaces {
    ...TypeRef
  }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes {
    ...TypeRef
  }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}
`

type introspectionTypeRef struct {
	Kind string  `json:"kind"`
	Name *string `json:"name"`
}

type introspectionInputValue struct {
	Name string                `json:"name"`
	Type *introspectionTypeRef `json:"type"`
}

type introspectionData struct {
	Schema *struct {
		QueryType *struct {
			Name string `json:"name"`
		} `json:"queryType"`
		Types []struct {
			Kind   string  `json:"kind"`
			Name   *string `json:"name"`
			Fields *[]struct {
				Name string                     `json:"name"`
				Args *[]introspectionInputValue `json:"args"`
				Type *introspectionTypeRef      `json:"type"`
			} `json:"fields"`
			Interfaces *[]introspectionTypeRef `json:"interfaces"`
		} `json:"types"`
		Directives []struct {
			Name      string                     `json:"name"`
			Locations []string                   `json:"locations"`
			Args      *[]introspectionInputValue `json:"args"`
		} `json:"directives"`
	} `json:"__schema"`
}

// CheckIntrospectionResult verifies that data, the response data of
// IntrospectionQuery, has what a client needs to rebuild the schema: object
// types list their fields and interfaces, and every field and directive lists
// its arguments. It returns the field names per object type.
func CheckIntrospectionResult(t TestingT, data []byte) map[string][]string {
	t.Helper()

	var v introspectionData
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v.Schema == nil {
		t.Fatal("__schema is null")
	}
	if v.Schema.QueryType == nil {
		t.Fatal("__schema.queryType is null")
	}

	objects := make(map[string][]string)
	for _, typ := range v.Schema.Types {
		if typ.Name == nil {
			t.Error("named type without a name")
			continue
		}
		if typ.Kind != "OBJECT" && typ.Kind != "INTERFACE" {
			continue
		}
		if typ.Fields == nil {
			t.Error(fmt.Sprintf("%s.fields is null", *typ.Name))
			continue
		}
		if typ.Kind == "OBJECT" && typ.Interfaces == nil {
			t.Error(fmt.Sprintf("%s.interfaces is null", *typ.Name))
		}

		names := make([]string, 0, len(*typ.Fields))
		for _, f := range *typ.Fields {
			names = append(names, f.Name)
			if f.Args == nil {
				t.Error(fmt.Sprintf("%s.%s.args is null", *typ.Name, f.Name))
			}
			if f.Type == nil {
				t.Error(fmt.Sprintf("%s.%s.type is null", *typ.Name, f.Name))
			}
		}
		if typ.Kind == "OBJECT" {
			objects[*typ.Name] = names
		}
	}

	for _, d := range v.Schema.Directives {
		if d.Args == nil {
			t.Error(fmt.Sprintf("@%s.args is null", d.Name))
		}
		if len(d.Locations) == 0 {
			t.Error(fmt.Sprintf("@%s has no locations", d.Name))
		}
	}

	return objects
}
