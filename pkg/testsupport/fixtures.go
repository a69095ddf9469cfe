package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture reads testdata/name relative to the package under test.
func LoadFixture(t testing.TB, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return string(data)
}

// LoadGolden decodes the JSON golden file testdata/name into v.
func LoadGolden(t testing.TB, name string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(LoadFixture(t, name)), v); err != nil {
		t.Fatalf("decode golden %s: %v", name, err)
	}
}
