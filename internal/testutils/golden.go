package testutils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TestingT is the subset of testing.TB the helpers in this package need.
type TestingT interface {
	Helper()
	Logf(format string, args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
}

// CheckGoldenFile compares actual with the contents of expectFilePath.
// A missing file is created from actual, and UPDATE_GOLDEN=1 rewrites it.
func CheckGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") == "1" {
		writeGoldenFile(t, actual, expectFilePath)
		return
	}

	expect, err := os.ReadFile(expectFilePath)
	if os.IsNotExist(err) {
		writeGoldenFile(t, actual, expectFilePath)
		return
	} else if err != nil {
		t.Error(err)
		return
	}

	expectText := strings.TrimRight(string(expect), "\n")
	actualText := strings.TrimRight(string(actual), "\n")
	if expectText != actualText {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(expectText),
			B:        difflib.SplitLines(actualText),
			FromFile: expectFilePath,
			ToFile:   "actual",
			Context:  5,
		}
		d, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			t.Fatal(err)
		}
		t.Error(d)
	}
}

func writeGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(expectFilePath), 0755)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(expectFilePath, actual, 0644)
	if err != nil {
		t.Fatal(err)
	}
}
