// Package registry implements the registry state engine: parsing Git tags
// into typed events, folding them with the declarative artifacts.yaml index
// into a canonical RegistryState, answering read queries against that
// state, and producing new tags that preserve the registry's invariants.
package registry

import (
	"regexp"
	"time"
)

// Convention selects how version strings are ordered and bumped.
type Convention string

const (
	ConventionNumbered Convention = "numbers"
	ConventionSemver   Convention = "semver"
)

// SortMode selects how "greatest" queries break ties across versions.
type SortMode string

const (
	SortByTime   SortMode = "by_time"
	SortBySemver SortMode = "by_semver"
)

// Kind is the closed set of event kinds carried by a tag or synthesized
// from an index row.
type Kind string

const (
	KindCommit         Kind = "commit"
	KindRegistration   Kind = "registration"
	KindDeregistration Kind = "deregistration"
	KindAssignment     Kind = "assignment"
	KindUnassignment   Kind = "unassignment"
	KindDeprecation    Kind = "deprecation"
	KindAnnotation     Kind = "annotation"
)

var artifactNamePattern = regexp.MustCompile(`^[^\s@#!:]+$`)

// ValidArtifactName reports whether name satisfies spec.md §3: non-empty
// UTF-8, no whitespace, no '@', '#', '!', ':'.
func ValidArtifactName(name string) bool {
	return name != "" && artifactNamePattern.MatchString(name)
}

// Event is an immutable record derived from a Git tag, or synthesized by
// the Event Collector for an artifacts.yaml row observed at a commit.
type Event struct {
	Kind      Kind
	Artifact  string
	Version   string // set for registration/deregistration events
	Stage     string // set for assignment/unassignment events
	Message   string // free text: annotation payload or tag-creation message
	Ref       string // tag name, or synthetic ref for commit events
	Commit    string // commit SHA the event's tag points at (or the commit itself for Kind==commit)
	Author    string
	Timestamp time.Time
	Seq       int
	Meta      ArtifactMeta // set for Kind==commit: the index row observed at Commit

	// SimpleForm marks a legacy assignment, unassignment or deprecation
	// tag with no embedded #seq. Per spec.md §4.4 step 2, simple-form events disable
	// History() for their (artifact, stage) pair.
	SimpleForm bool

	// Conflict and Orphan are assembler annotations (spec.md §4.5 / §7:
	// "records conflict/orphan markers on suspect events and keeps
	// going"), set by Assemble and read back by the Query Layer. They are
	// never set by ParseTag and never round-trip through FormatTag.
	Conflict bool
	Orphan   bool
}

// seqKey returns the (artifact, key) pair that seq-monotonicity
// (invariant 4) is computed over: stage for assignment/unassignment
// tags, version for version tags (spec.md §3 invariant 4).
func (e Event) seqKey() string {
	switch e.Kind {
	case KindAssignment, KindUnassignment:
		return "stage:" + e.Stage
	case KindRegistration, KindDeregistration:
		return "version:" + e.Version
	case KindDeprecation:
		return "deprecation"
	case KindAnnotation:
		if e.Version != "" {
			return "annotation:version:" + e.Version
		}
		return "annotation:stage:" + e.Stage
	default:
		return ""
	}
}

// ArtifactMeta is the per-commit metadata normalized out of artifacts.yaml
// by the Index Reader (C3).
type ArtifactMeta struct {
	Type        string
	Path        string
	Virtual     bool
	Labels      []string
	Description string
	Custom      map[string]any
}

// AssignmentRecord is one entry of a Version's assignment history, as
// surfaced by the Query Layer.
type AssignmentRecord struct {
	Stage     string
	Assigned  bool // false means this record is an unassignment
	Event     Event
}

// VersionState is the per-(artifact,version) slice of RegistryState.
type VersionState struct {
	Version           string
	CreatedAt         time.Time
	Commit            string
	Registered        bool
	Deregistered      bool
	Deprecated        bool
	Conflict          bool // a later registration tried to reuse this name
	CurrentStages     map[string]bool
	AssignmentHistory []AssignmentRecord
	RegistrationEvent Event

	// stageLast is Assemble's working state: the last assignment or
	// unassignment event touching each stage for this specific version,
	// independent of which version holds the stage artifact-wide. Used
	// for the multi-version-per-stage view (spec.md §4.5).
	stageLast map[string]Event
}

// ArtifactState is the per-artifact slice of RegistryState.
type ArtifactState struct {
	Name       string
	Meta       ArtifactMeta
	Deprecated bool
	Versions   map[string]*VersionState
	// StagePointer maps a stage name to the version currently holding it,
	// per the "greatest-seq event touching S across all versions" rule.
	StagePointer map[string]string
	// SimpleFormStages records stages that any legacy simple-form tag has
	// touched; History() degrades for these.
	SimpleFormStages map[string]bool

	// StageVersions is only populated when Config.MultiVersionStage is
	// set: for each stage, every version independently currently holding
	// it, unordered (the Query Layer applies Config.Sort).
	StageVersions map[string][]string

	// stageLast is Assemble's working state: the highest-seq
	// assignment/unassignment event seen so far per stage. Not part of
	// the public snapshot; read by state.go and by History() in query.go.
	stageLast map[string]Event
}

// RegistryState is the canonical, queryable view assembled from an event
// stream (spec.md §3 "RegistryState").
type RegistryState struct {
	Artifacts map[string]*ArtifactState
	Events    []Event // full display-ordered event stream, annotated post-fold
	Config    Config
}

func newArtifactState(name string) *ArtifactState {
	return &ArtifactState{
		Name:             name,
		Versions:         make(map[string]*VersionState),
		StagePointer:     make(map[string]string),
		SimpleFormStages: make(map[string]bool),
		StageVersions:    make(map[string][]string),
	}
}

// Config carries the subset of external configuration (spec.md §6) the
// registry core needs. It is passed explicitly end to end; the core keeps
// no global state (spec.md §9).
type Config struct {
	Types             []string
	Stages            []string
	VersionConvention Convention
	IndexPath         string
	Sort              SortMode
	Kanban            bool
	MultiVersionStage bool
}

// DefaultConfig returns the zero-value-safe defaults spec.md §6 implies.
func DefaultConfig() Config {
	return Config{
		VersionConvention: ConventionNumbered,
		IndexPath:         "artifacts.yaml",
		Sort:              SortByTime,
	}
}

func (c Config) typeAllowed(t string) bool {
	if len(c.Types) == 0 || t == "" {
		return true
	}
	for _, a := range c.Types {
		if a == t {
			return true
		}
	}
	return false
}

func (c Config) stageAllowed(s string) bool {
	if len(c.Stages) == 0 {
		return true
	}
	for _, a := range c.Stages {
		if a == s {
			return true
		}
	}
	return false
}
