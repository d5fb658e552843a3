// Package main implements the update-db-version CLI tool.
//
// The update-db-version tool is a command-line interface used by CI to advance
// the database schema version tracked in a small YAML document (by default
// ".db-versions.yml" in the working directory). It reads the current_version
// counter, increments it by one, and prepends a history record linking the new
// version to the pull request that introduced it. Both fields are written back
// in a single atomic update, so the counter and the history can never be
// committed separately.
//
// Command Usage:
//
//	update-db-version [flags] <pr-number>
//
// Flags:
//
//	-file:    Specifies the path to the database version document.
//	          (Defaults to ".db-versions.yml")
//	-dry:     Performs every check and reports the bump that would be made
//	          without modifying the document.
//	-version: Displays the version of the update-db-version CLI tool and exits.
//
// Examples:
//
//	# Bump the schema version and record PR 123 (e.g. 41 → 42)
//	update-db-version 123
//
//	# Bump a document kept somewhere other than the working directory
//	update-db-version -file db/.db-versions.yml 123
//
//	# Check what would happen without touching the document
//	update-db-version -dry 123
//
// The tool never creates the document: it is owned externally and checked into
// the repository. Every failure (missing document, a PR that already has a
// record, a missing or non-numeric current_version, a malformed document) is
// reported as a single descriptive line on stderr with exit code 1, and leaves
// the document untouched.
//
// Document format:
//
//	current_version: 42
//	versions:
//	  - version: 42
//	    pr: 123
//	  - version: 41
//	    pr: 120
//
// For more detailed API documentation, please see the documentation in the
// "pkg" package or visit [PkgGoDev](https://pkg.go.dev/github.com/bcomnes/dbversion).
package main
