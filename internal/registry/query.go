package registry

import (
	"sort"
	"time"
)

// ArtifactSummary is one row of Show()'s artifact-level view.
type ArtifactSummary struct {
	Name       string
	Latest     string // empty if the artifact has no eligible version
	Deprecated bool
	// Stages maps stage name to the version currently holding it.
	Stages map[string]string
}

// VersionSummary is one row of ShowArtifact()'s version-level view.
type VersionSummary struct {
	Version       string
	CreatedAt     time.Time
	Commit        string
	Registered    bool
	Deregistered  bool
	Deprecated    bool
	CurrentStages []string
}

// Show implements spec.md §4.6 `show()`: one row per artifact with its
// latest non-deprecated version and current stage pointers.
func (s *RegistryState) Show() []ArtifactSummary {
	out := make([]ArtifactSummary, 0, len(s.Artifacts))
	for name, art := range s.Artifacts {
		latest, _ := s.Latest(name)
		stages := make(map[string]string, len(art.StagePointer))
		for stage, version := range art.StagePointer {
			stages[stage] = version
		}
		out = append(out, ArtifactSummary{
			Name:       name,
			Latest:     latest,
			Deprecated: art.Deprecated,
			Stages:     stages,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ShowArtifact implements spec.md §4.6 `show(artifact)`: one row per
// version with its current stages.
func (s *RegistryState) ShowArtifact(artifact string) ([]VersionSummary, error) {
	art, ok := s.Artifacts[artifact]
	if !ok {
		return nil, NotFoundError(artifact, "artifact not found")
	}
	out := make([]VersionSummary, 0, len(art.Versions))
	for _, vs := range art.Versions {
		stages := make([]string, 0, len(vs.CurrentStages))
		for stage := range vs.CurrentStages {
			stages = append(stages, stage)
		}
		sort.Strings(stages)
		out = append(out, VersionSummary{
			Version:       vs.Version,
			CreatedAt:     vs.CreatedAt,
			Commit:        vs.Commit,
			Registered:    vs.Registered,
			Deregistered:  vs.Deregistered,
			Deprecated:    vs.Deprecated,
			CurrentStages: stages,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Latest implements spec.md §4.6 `latest(artifact)`: the greatest
// registered, non-deregistered, non-deprecated version, ordered by the
// configured Sort (spec.md §4.5).
func (s *RegistryState) Latest(artifact string) (string, error) {
	art, ok := s.Artifacts[artifact]
	if !ok {
		return "", NotFoundError(artifact, "artifact not found")
	}
	if art.Deprecated {
		return "", NotFoundError(artifact, "artifact is deprecated")
	}

	var candidates []*VersionState
	for _, vs := range art.Versions {
		if vs.Registered && !vs.Deregistered && !vs.Deprecated {
			candidates = append(candidates, vs)
		}
	}
	if len(candidates) == 0 {
		return "", NotFoundError(artifact, "no eligible version")
	}

	if s.Config.Sort == SortBySemver {
		names := make([]string, len(candidates))
		for i, vs := range candidates {
			names[i] = vs.Version
		}
		return GreatestVersion(names, s.Config.VersionConvention)
	}

	best := candidates[0]
	for _, vs := range candidates[1:] {
		if vs.CreatedAt.After(best.CreatedAt) {
			best = vs
		}
	}
	return best.Version, nil
}

// Which implements spec.md §4.6 `which(artifact, stage)`: the version
// currently pointed to by stage, or ("", false) if none.
func (s *RegistryState) Which(artifact, stage string) (string, bool) {
	art, ok := s.Artifacts[artifact]
	if !ok {
		return "", false
	}
	version, ok := art.StagePointer[stage]
	return version, ok
}

// WhichAll returns every version currently holding stage, ordered per
// Config.Sort. Only meaningful when Config.MultiVersionStage is set; in
// single-pointer mode it degrades to at most Which()'s single result.
func (s *RegistryState) WhichAll(artifact, stage string) ([]string, error) {
	art, ok := s.Artifacts[artifact]
	if !ok {
		return nil, NotFoundError(artifact, "artifact not found")
	}
	if !s.Config.MultiVersionStage {
		if v, ok := art.StagePointer[stage]; ok {
			return []string{v}, nil
		}
		return nil, nil
	}
	versions := append([]string(nil), art.StageVersions[stage]...)
	if s.Config.Sort == SortBySemver && len(versions) > 1 {
		sort.Slice(versions, func(i, j int) bool {
			cmp, err := CompareVersions(versions[i], versions[j], s.Config.VersionConvention)
			if err != nil {
				return versions[i] < versions[j]
			}
			return cmp > 0
		})
	} else {
		sort.Slice(versions, func(i, j int) bool {
			vi, vj := art.Versions[versions[i]], art.Versions[versions[j]]
			if vi == nil || vj == nil {
				return versions[i] < versions[j]
			}
			return vi.CreatedAt.After(vj.CreatedAt)
		})
	}
	return versions, nil
}

// Describe implements spec.md §4.6 `describe(artifact)`: the latest
// index metadata observed for artifact within the collected scope.
func (s *RegistryState) Describe(artifact string) (ArtifactMeta, error) {
	art, ok := s.Artifacts[artifact]
	if !ok {
		return ArtifactMeta{}, NotFoundError(artifact, "artifact not found")
	}
	return art.Meta, nil
}

// History implements spec.md §4.6 `history(artifact?)`: the raw event
// list in display order, with one synthetic Conflict marker substituted
// for each (artifact, stage) pair whose currency was ever set by a
// simple-form tag (spec.md §4.4 step 2, §9 "simple vs incremental").
// artifact == "" returns history across every artifact.
func (s *RegistryState) History(artifact string) []Event {
	var out []Event
	for i := range s.Events {
		e := s.Events[i]
		if artifact != "" && e.Artifact != artifact {
			continue
		}
		out = append(out, e)
	}

	for name, art := range s.Artifacts {
		if artifact != "" && name != artifact {
			continue
		}
		for stage := range art.SimpleFormStages {
			out = degradeStageHistory(out, name, stage, art.stageLast[stage])
		}
	}

	sortEvents(out)
	return out
}

// degradeStageHistory removes every assignment/unassignment row for
// (artifact, stage) from events and replaces them with a single Conflict
// marker, carrying the most recent touching event's timestamp so it sorts
// in roughly the right place.
func degradeStageHistory(events []Event, artifact, stage string, marker Event) []Event {
	kept := events[:0:0]
	var latest *Event
	for i := range events {
		e := events[i]
		if e.Artifact == artifact && e.Stage == stage && (e.Kind == KindAssignment || e.Kind == KindUnassignment) {
			if latest == nil || e.Timestamp.After(latest.Timestamp) {
				cp := e
				latest = &cp
			}
			continue
		}
		kept = append(kept, e)
	}
	if latest == nil {
		return events
	}
	conflictEvent := *latest
	conflictEvent.Conflict = true
	if conflictEvent.Ref == "" {
		conflictEvent.Ref = marker.Ref
	}
	return append(kept, conflictEvent)
}

// CheckRefResult is check-ref's classification of an arbitrary ref/tag
// name against the assembled registry state.
type CheckRefResult struct {
	Ref        string
	Recognized bool
	Event      Event
}

// CheckRef implements spec.md §4.6 `check-ref(ref)`: classify a tag name
// and return the enriched event the Assembler produced for it, if the
// registry has one (carrying Conflict/Orphan annotations); otherwise a
// freshly parsed, unenriched classification.
func (s *RegistryState) CheckRef(ref string) CheckRefResult {
	parsed, ok := ParseTag(ref)
	if !ok {
		return CheckRefResult{Ref: ref, Recognized: false}
	}
	for _, e := range s.Events {
		if e.Ref == ref {
			return CheckRefResult{Ref: ref, Recognized: true, Event: e}
		}
	}
	return CheckRefResult{Ref: ref, Recognized: true, Event: parsed}
}
