package dbversion

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const seedDocument = `current_version: 41
versions:
  - version: 41
    pr: 120
`

// writeSeedDocument writes the standard starting document into a fresh temp
// directory and returns its path.
func writeSeedDocument(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "dbversion_bump_test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	path := filepath.Join(tmpDir, ".db-versions.yml")
	if err := os.WriteFile(path, []byte(seedDocument), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestRun validates the happy path: counter advanced, record prepended, and
// the document rewritten in canonical form.
func TestRun(t *testing.T) {
	path := writeSeedDocument(t)

	meta, err := Run(path, 123)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if meta.OldVersion != 41 || meta.NewVersion != 42 || meta.PR != 123 {
		t.Errorf("meta = %+v, expected {41 42 123}", meta)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := `current_version: 42
versions:
  - version: 42
    pr: 123
  - version: 41
    pr: 120
`
	if string(got) != expected {
		t.Errorf("document after Run =\n%s\nexpected:\n%s", got, expected)
	}
}

// TestRunMissingDocument validates that Run never creates the document.
func TestRunMissingDocument(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbversion_bump_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, ".db-versions.yml")

	if _, err := Run(path, 123); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Run on missing document error = %v, expected ErrDocumentNotFound", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Run created the document, expected it to be left missing")
	}
}

// TestRunDuplicatePR validates the business-rule rejection and that the
// document bytes are untouched, no matter how many times the failure repeats.
func TestRunDuplicatePR(t *testing.T) {
	path := writeSeedDocument(t)

	for i := 0; i < 3; i++ {
		if _, err := Run(path, 120); !errors.Is(err, ErrDuplicatePR) {
			t.Fatalf("Run with duplicate PR error = %v, expected ErrDuplicatePR", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, []byte(seedDocument)) {
			t.Fatalf("document mutated by failed Run:\n%s", got)
		}
	}
}

// TestRunBadVersion validates rejection of a missing or non-numeric
// current_version, leaving the document untouched.
func TestRunBadVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric", "current_version: abc\nversions:\n  - version: 41\n    pr: 120\n"},
		{"absent", "versions:\n  - version: 41\n    pr: 120\n"},
	}
	for _, tc := range tests {
		tmpDir, err := os.MkdirTemp("", "dbversion_bump_test")
		if err != nil {
			t.Fatal(err)
		}
		defer os.RemoveAll(tmpDir)
		path := filepath.Join(tmpDir, ".db-versions.yml")
		if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := Run(path, 123); !errors.Is(err, ErrVersionParse) {
			t.Errorf("%s: Run error = %v, expected ErrVersionParse", tc.name, err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tc.content {
			t.Errorf("%s: document mutated by failed Run:\n%s", tc.name, got)
		}
	}
}

// TestRunMalformedDocument validates rejection of structurally broken
// documents before any mutation.
func TestRunMalformedDocument(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "dbversion_bump_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	path := filepath.Join(tmpDir, ".db-versions.yml")

	content := "current_version: 41\nversions:\n  - version: 41\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Run(path, 123); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("Run error = %v, expected ErrMalformedDocument", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("document mutated by failed Run:\n%s", got)
	}
}

// TestRunMonotonicity validates that N sequential bumps with distinct PRs
// advance the counter by exactly N, with a strictly descending history.
func TestRunMonotonicity(t *testing.T) {
	path := writeSeedDocument(t)

	const n = 5
	for i := 0; i < n; i++ {
		pr := 200 + i
		meta, err := Run(path, pr)
		if err != nil {
			t.Fatalf("Run #%d failed: %v", i+1, err)
		}
		if meta.NewVersion != 42+i {
			t.Fatalf("Run #%d NewVersion = %d, expected %d", i+1, meta.NewVersion, 42+i)
		}
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	cur, err := doc.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if cur != 41+n {
		t.Errorf("final version = %d, expected %d", cur, 41+n)
	}
	if len(doc.Versions) != n+1 {
		t.Fatalf("history length = %d, expected %d", len(doc.Versions), n+1)
	}
	for i, rec := range doc.Versions {
		expected := 41 + n - i
		if rec.Version != expected {
			t.Errorf("history[%d].Version = %d, expected %d", i, rec.Version, expected)
		}
	}
	if doc.Versions[0].Version != cur {
		t.Errorf("newest record version %d does not match current_version %d", doc.Versions[0].Version, cur)
	}
}

// TestDryRun validates that DryRun reports the bump without touching the
// document, and still rejects duplicates.
func TestDryRun(t *testing.T) {
	path := writeSeedDocument(t)

	meta, err := DryRun(path, 123)
	if err != nil {
		t.Fatalf("DryRun failed: %v", err)
	}
	if meta.OldVersion != 41 || meta.NewVersion != 42 || meta.PR != 123 {
		t.Errorf("meta = %+v, expected {41 42 123}", meta)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte(seedDocument)) {
		t.Errorf("DryRun mutated the document:\n%s", got)
	}

	if _, err := DryRun(path, 120); !errors.Is(err, ErrDuplicatePR) {
		t.Errorf("DryRun with duplicate PR error = %v, expected ErrDuplicatePR", err)
	}
}

// TestRunErrorMessages exercises the error text callers see.
func TestRunErrorMessages(t *testing.T) {
	path := writeSeedDocument(t)

	_, err := Run(path, 120)
	if err == nil {
		t.Fatal("expected duplicate PR error")
	}
	if want := "PR 120 already has a version record"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}
