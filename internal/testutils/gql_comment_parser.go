package testutils

import (
	"fmt"
	"regexp"
)

// Test assets carry their settings in comment lines:
//
//	# schema: books.graphqls
//	# option:variables: by_date.variables.json
//	# option:ignoreDateFilter: true

func FindSchemaFileName(t TestingT, source string) string {
	t.Helper()

	v, ok := findDirective(t, `(?m)^# schema:\s*([^\s]+)$`, source)
	if !ok {
		t.Fatal("schema file directive mismatch")
	}

	return v
}

func FindOptionString(t TestingT, optionName, source string) string {
	t.Helper()

	v, ok := findDirective(t, fmt.Sprintf(`(?m)^# option:%s:\s*([^\s]+)$`, regexp.QuoteMeta(optionName)), source)
	if !ok {
		t.Logf("option %s value is not found", optionName)
		return ""
	}

	return v
}

func FindOptionBool(t TestingT, optionName, source string) bool {
	t.Helper()

	return FindOptionString(t, optionName, source) == "true"
}

func findDirective(t TestingT, pattern, source string) (string, bool) {
	t.Helper()

	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatal(err)
	}

	ss := re.FindStringSubmatch(source)
	if len(ss) != 2 {
		return "", false
	}

	return ss[1], true
}
