// Package dbversion provides a library for bumping the database schema
// version tracked in a YAML document.
//
// It provides functionalities for:
//   - Loading and parsing the version document: a current_version counter plus
//     a newest-first history of records pairing each version with the pull
//     request that introduced it.
//   - Checking whether a pull request already has a history record, so the
//     same PR can never be recorded twice.
//   - Bumping current_version by one and prepending the matching history
//     record as a single in-memory mutation.
//   - Persisting the updated document with one atomic rename-into-place write,
//     so the counter and the history can never be committed separately.
//
// This library is designed to be used both as a standalone command-line tool
// via the provided CLI (at the repository root) and as a programmatic API to
// integrate schema version bumping into other Go programs.
//
// Usage Example:
//
//	import (
//	    "log"
//	    dbversion "github.com/bcomnes/dbversion/pkg"
//	)
//
//	func main() {
//	    meta, err := dbversion.Run(".db-versions.yml", 123)
//	    if err != nil {
//	        log.Fatalf("version bump failed: %v", err)
//	    }
//	    log.Printf("bumped schema version %d -> %d", meta.OldVersion, meta.NewVersion)
//	}
//
// For additional details and API documentation, see https://pkg.go.dev/github.com/bcomnes/dbversion.
package dbversion
