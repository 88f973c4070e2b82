package testsupport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldenEnv rewrites golden files instead of comparing against them
// when set to a non-empty value.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// FixturePath returns the path of a fixture under the package testdata directory.
func FixturePath(parts ...string) string {
	return filepath.Join(append([]string{"testdata"}, parts...)...)
}

// GoldenPath returns the path of a golden file under testdata/golden.
func GoldenPath(name string) string {
	return FixturePath("golden", name)
}

// LoadFixture reads a fixture file or fails the test.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON decodes a JSON fixture into dest or fails the test.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("decode fixture %s: %v", path, err)
	}
}

// LoadRecords decodes a JSON array fixture into a slice of records.
func LoadRecords[T any](t testing.TB, path string) []T {
	t.Helper()

	var records []T
	LoadFixtureJSON(t, path, &records)
	return records
}

// CompareWithGoldenJSON indents actual and compares it with the golden file at
// path. A missing golden file, or UPDATE_GOLDEN being set, writes it instead.
func CompareWithGoldenJSON(t testing.TB, path string, actual any) {
	t.Helper()

	got, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		t.Fatalf("encode golden value for %s: %v", path, err)
	}
	got = append(got, '\n')

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) || os.Getenv(UpdateGoldenEnv) != "" {
		writeGolden(t, path, got)
		return
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want)) {
		t.Errorf("golden mismatch for %s:\nwant:\n%s\ngot:\n%s", path, want, got)
	}
}

func writeGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create golden dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden file %s: %v", path, err)
	}
	t.Logf("wrote golden file %s", path)
}
