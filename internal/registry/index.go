package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// rawIndexRow is the wire shape of one artifacts.yaml entry, used for both
// the flat-mapping and legacy list forms.
type rawIndexRow struct {
	Name        string         `yaml:"name,omitempty"`
	Type        string         `yaml:"type,omitempty"`
	Path        string         `yaml:"path,omitempty"`
	Virtual     *bool          `yaml:"virtual,omitempty"`
	Labels      []string       `yaml:"labels,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Custom      map[string]any `yaml:",inline"`
}

func (r rawIndexRow) toMeta() ArtifactMeta {
	virtual := true
	if r.Virtual != nil {
		virtual = *r.Virtual
	}
	return ArtifactMeta{
		Type:        r.Type,
		Path:        r.Path,
		Virtual:     virtual,
		Labels:      r.Labels,
		Description: r.Description,
		Custom:      r.Custom,
	}
}

// ParseIndex normalizes raw artifacts.yaml bytes into a flat mapping of
// artifact name to metadata, per spec.md §4.3/§6. It accepts both the flat
// mapping and legacy list shapes.
func ParseIndex(data []byte) (map[string]ArtifactMeta, error) {
	if len(data) == 0 {
		return map[string]ArtifactMeta{}, nil
	}

	var probe any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, ConfigError("", "malformed artifacts.yaml: %v", err)
	}
	if probe == nil {
		return map[string]ArtifactMeta{}, nil
	}

	switch probe.(type) {
	case []any:
		return parseLegacyList(data)
	default:
		return parseFlatMapping(data)
	}
}

func parseFlatMapping(data []byte) (map[string]ArtifactMeta, error) {
	var raw map[string]rawIndexRow
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ConfigError("", "malformed artifacts.yaml mapping: %v", err)
	}
	out := make(map[string]ArtifactMeta, len(raw))
	for name, row := range raw {
		out[name] = row.toMeta()
	}
	return out, nil
}

func parseLegacyList(data []byte) (map[string]ArtifactMeta, error) {
	var rows []rawIndexRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, ConfigError("", "malformed artifacts.yaml list: %v", err)
	}
	out := make(map[string]ArtifactMeta, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue // dropped without a warning or an error
		}
		out[row.Name] = row.toMeta()
	}
	return out, nil
}

// BlobReader is the narrow Git-plumbing dependency the Index Reader needs:
// read a named blob's bytes as of a commit (or the working tree when
// commit is the empty string).
type BlobReader interface {
	ReadFileAt(commit, path string) ([]byte, error)
}

// ReadIndexAt loads and normalizes artifacts.yaml at commit (or the
// working tree, for commit == ""). A missing file is an empty mapping.
// A malformed file at a non-HEAD commit is downgraded to a warning and
// treated as empty so historical scans don't abort (spec.md §4.3); at
// HEAD the parse error is returned, and the Collector fails the whole
// collection with it.
func ReadIndexAt(reader BlobReader, commit, path string, isHead bool, warn func(string)) (map[string]ArtifactMeta, error) {
	data, err := reader.ReadFileAt(commit, path)
	if err != nil {
		if isMissingFile(err) {
			return map[string]ArtifactMeta{}, nil
		}
		return nil, RepositoryError(err, "reading %s at %s", path, displayCommit(commit))
	}

	meta, err := ParseIndex(data)
	if err != nil {
		if isHead {
			return nil, err
		}
		if warn != nil {
			warn(fmt.Sprintf("malformed %s at %s, treating as empty: %v", path, displayCommit(commit), err))
		}
		return map[string]ArtifactMeta{}, nil
	}
	return meta, nil
}

func displayCommit(commit string) string {
	if commit == "" {
		return "working tree"
	}
	return commit
}

// isMissingFile reports a "file not found" error from a BlobReader. The
// gitio adapter (and the test fakes) return an error type with a
// NotFound() bool method, detected through the interface below to avoid
// an import cycle on internal/gitio.
type notFounder interface {
	NotFound() bool
}

func isMissingFile(err error) bool {
	nf, ok := err.(notFounder)
	return ok && nf.NotFound()
}
