package testhelpers

import (
	"path/filepath"
	"runtime"
)

// migrationsDir resolves the repository's migrations directory from this
// file's location, so integration tests work regardless of the package they
// run in.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
