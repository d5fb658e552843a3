package dbversion

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"
)

// versionPattern matches a plain non-negative integer. current_version must
// match it exactly; anything else (including signs, decimals, or quoted text)
// is rejected.
var versionPattern = regexp.MustCompile(`^\d+$`)

// Record is one entry in the document's history, pairing a schema version
// with the pull request that introduced it.
type Record struct {
	Version int `yaml:"version"`
	PR      int `yaml:"pr"`
}

// UnmarshalYAML decodes a history record, rejecting entries that are not
// mappings or that lack an integer version or pr field.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("version record is not a mapping (line %d)", value.Line)
	}
	var raw struct {
		Version *int `yaml:"version"`
		PR      *int `yaml:"pr"`
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decoding version record (line %d): %v", value.Line, err)
	}
	if raw.Version == nil {
		return fmt.Errorf("version record is missing a version field (line %d)", value.Line)
	}
	if raw.PR == nil {
		return fmt.Errorf("version record is missing a pr field (line %d)", value.Line)
	}
	r.Version = *raw.Version
	r.PR = *raw.PR
	return nil
}

// Document is the parsed version-tracking document. The current_version
// scalar is kept raw as read so duplicate-PR detection can run before the
// scalar is validated, matching the order a bump checks things in.
type Document struct {
	Versions []Record

	rawVersion string
	hasVersion bool
}

// ParseDocument decodes a version document from its YAML serialization.
// Structural problems (the root is not a mapping, versions is not a sequence,
// a record is missing a field or holds a non-integer) are reported as
// ErrMalformedDocument. A missing or non-numeric current_version is not an
// error at parse time; it surfaces from CurrentVersion.
func ParseDocument(data []byte) (*Document, error) {
	// The fields must be value yaml.Node: the decoder captures raw nodes only
	// into value fields, and an absent key leaves the zero Node (Kind 0).
	var raw struct {
		CurrentVersion yaml.Node `yaml:"current_version"`
		Versions       yaml.Node `yaml:"versions"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{}
	if raw.CurrentVersion.Kind != 0 {
		doc.hasVersion = true
		if raw.CurrentVersion.Kind == yaml.ScalarNode {
			doc.rawVersion = raw.CurrentVersion.Value
		}
		// A non-scalar current_version leaves rawVersion empty and fails
		// the digits check in CurrentVersion.
	}
	if raw.Versions.Kind != 0 && raw.Versions.Tag != "!!null" {
		if raw.Versions.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: versions is not a sequence (line %d)", ErrMalformedDocument, raw.Versions.Line)
		}
		if err := raw.Versions.Decode(&doc.Versions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	}
	return doc, nil
}

// LoadDocument reads and parses the version document at path. The document is
// owned externally; LoadDocument never creates it, and a missing file is
// reported as ErrDocumentNotFound.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return ParseDocument(data)
}

// HasPR reports whether any history record was introduced by pr.
func (d *Document) HasPR(pr int) bool {
	for _, rec := range d.Versions {
		if rec.PR == pr {
			return true
		}
	}
	return false
}

// CurrentVersion extracts the current_version counter. A missing field or a
// scalar that is not a plain non-negative integer is reported as
// ErrVersionParse.
func (d *Document) CurrentVersion() (int, error) {
	if !d.hasVersion {
		return 0, fmt.Errorf("%w: document has no current_version field", ErrVersionParse)
	}
	if !versionPattern.MatchString(d.rawVersion) {
		return 0, fmt.Errorf("%w: current_version %q is not a non-negative integer", ErrVersionParse, d.rawVersion)
	}
	n, err := strconv.Atoi(d.rawVersion)
	if err != nil {
		return 0, fmt.Errorf("%w: current_version %q: %v", ErrVersionParse, d.rawVersion, err)
	}
	return n, nil
}

// Bump advances the document by one version in memory: it rejects a pull
// request that already has a record, validates current_version, increments
// it, and prepends the new record so the history stays newest-first. Nothing
// is written to disk; on error the document is left untouched.
func (d *Document) Bump(pr int) (oldVersion, newVersion int, err error) {
	if d.HasPR(pr) {
		return 0, 0, fmt.Errorf("%w: PR %d already has a version record", ErrDuplicatePR, pr)
	}
	oldVersion, err = d.CurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	newVersion = oldVersion + 1
	d.rawVersion = strconv.Itoa(newVersion)
	d.Versions = append([]Record{{Version: newVersion, PR: pr}}, d.Versions...)
	return oldVersion, newVersion, nil
}

// persistedDocument fixes the on-disk field order: current_version first,
// then the history.
type persistedDocument struct {
	CurrentVersion int      `yaml:"current_version"`
	Versions       []Record `yaml:"versions"`
}

// Encode serializes the document with the canonical two-space indent.
func (d *Document) Encode() ([]byte, error) {
	cur, err := d.CurrentVersion()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(persistedDocument{CurrentVersion: cur, Versions: d.Versions}); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}

// Save encodes the document and writes it into place with a single atomic
// rename, so an interrupted bump can never leave current_version and the
// history out of sync.
func (d *Document) Save(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}
