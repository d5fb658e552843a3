package dbversion

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// Error kinds reported by Run and DryRun. Callers distinguish them with
// errors.Is; every one of them aborts the bump and leaves the document
// unmodified.
var (
	// ErrDocumentNotFound means the version document does not exist at the
	// given path. The document is owned externally and is never created here.
	ErrDocumentNotFound = errors.New("version document not found")

	// ErrDuplicatePR means the pull request already has a history record.
	// This is a business-rule rejection, not a parse failure.
	ErrDuplicatePR = errors.New("duplicate PR")

	// ErrVersionParse means current_version is missing or is not a plain
	// non-negative integer.
	ErrVersionParse = errors.New("invalid current_version")

	// ErrMalformedDocument means the document is structurally broken in some
	// other way: the root is not a mapping, versions is not a sequence, or a
	// record is missing a field or holds a non-integer.
	ErrMalformedDocument = errors.New("malformed version document")
)

// BumpMeta holds metadata about a completed (or simulated) version bump.
type BumpMeta struct {
	OldVersion int // The version before bumping.
	NewVersion int // The new version after bumping.
	PR         int // The pull request recorded against the new version.
}

// Run bumps the schema version tracked in the document at path by one and
// records prNumber against the new version. Exactly one of two outcomes
// happens: the document advances by one version with a matching history
// record prepended, or Run returns an error and the document is untouched.
//
// Checks run in a fixed order, each failure short-circuiting the rest:
// document existence, duplicate PR, current_version validity. The counter
// update and the history prepend are persisted together in one atomic write.
func Run(path string, prNumber int) (BumpMeta, error) {
	meta := BumpMeta{PR: prNumber}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return meta, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return meta, fmt.Errorf("checking document %s: %w", path, err)
	}

	// Concurrent invocations against the same document serialize on a
	// sidecar lock so a bump never reads another bump's half-finished state.
	// The <path>.lock sidecar is left in place between runs; removing it
	// would race with a waiter holding the old inode. Unlock errors are
	// ignored: the lock is advisory and the write has already landed.
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return meta, fmt.Errorf("locking document %s: %w", path, err)
	}
	defer lock.Unlock()

	doc, err := LoadDocument(path)
	if err != nil {
		return meta, err
	}

	oldVersion, newVersion, err := doc.Bump(prNumber)
	if err != nil {
		return meta, err
	}
	meta.OldVersion = oldVersion
	meta.NewVersion = newVersion

	if err := doc.Save(path); err != nil {
		return meta, err
	}

	return meta, nil
}

// DryRun performs every check Run does and reports the bump that would be
// made, without taking the lock or writing the document.
func DryRun(path string, prNumber int) (BumpMeta, error) {
	meta := BumpMeta{PR: prNumber}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return meta, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return meta, fmt.Errorf("checking document %s: %w", path, err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		return meta, err
	}

	oldVersion, newVersion, err := doc.Bump(prNumber)
	if err != nil {
		return meta, err
	}
	meta.OldVersion = oldVersion
	meta.NewVersion = newVersion

	return meta, nil
}
