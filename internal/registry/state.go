package registry

import "time"

// Assemble folds a display-ordered Event stream (spec.md §3 invariant 5:
// already sorted by (timestamp, seq, ref)) into a canonical RegistryState.
// It is pure: the same stream always folds to the same state, and the
// input events are copied, not mutated in place, before conflict/orphan
// annotation (spec.md §4.5).
func Assemble(events []Event, cfg Config) *RegistryState {
	state := &RegistryState{
		Artifacts: make(map[string]*ArtifactState),
		Config:    cfg,
	}
	annotated := make([]Event, len(events))
	copy(annotated, events)

	// commitToVersion maps a commit SHA to the version label most recently
	// registered at it, per artifact. Spec.md §4.5 permits re-registering a
	// new version name at a commit that already carries one ("assignment
	// of a stage to a version whose commit equals the already-assigned
	// version's commit is permitted"); the latest registration at a given
	// commit is what later assignment tags resolve against.
	commitToVersion := make(map[string]map[string]string)

	for i := range annotated {
		e := &annotated[i]
		art := state.getOrCreate(e.Artifact)

		switch e.Kind {
		case KindCommit:
			art.Meta = e.Meta

		case KindRegistration:
			if vs, exists := art.Versions[e.Version]; exists && (vs.Registered || vs.Deregistered) {
				// invariant 1: the later event is kept in history but does
				// not shadow the earlier registration.
				e.Conflict = true
				vs.Conflict = true
				continue
			}
			art.Versions[e.Version] = &VersionState{
				Version:           e.Version,
				CreatedAt:         e.Timestamp,
				Commit:            e.Commit,
				Registered:        true,
				CurrentStages:     make(map[string]bool),
				RegistrationEvent: *e,
			}
			if commitToVersion[e.Artifact] == nil {
				commitToVersion[e.Artifact] = make(map[string]string)
			}
			commitToVersion[e.Artifact][e.Commit] = e.Version
			art.Deprecated = false // invariant 3: registration resets deprecation

		case KindDeregistration:
			vs, exists := art.Versions[e.Version]
			if !exists {
				e.Orphan = true
				continue
			}
			vs.Deregistered = true

		case KindAssignment, KindUnassignment:
			if e.SimpleForm {
				art.SimpleFormStages[e.Stage] = true
			}
			cur, exists := art.stageLastEvent()[e.Stage]
			if !exists || e.Seq >= cur.Seq {
				art.setStageLastEvent(e.Stage, *e)
			}
			if e.Kind == KindAssignment {
				art.Deprecated = false // invariant 3: assignment also resets deprecation
			}
			version, ok := commitToVersion[e.Artifact][e.Commit]
			if !ok {
				e.Orphan = true
				continue
			}
			if vs, exists := art.Versions[version]; exists {
				vs.AssignmentHistory = append(vs.AssignmentHistory, AssignmentRecord{
					Stage:    e.Stage,
					Assigned: e.Kind == KindAssignment,
					Event:    *e,
				})
				if vs.stageLast == nil {
					vs.stageLast = make(map[string]Event)
				}
				vs.stageLast[e.Stage] = *e
			}

		case KindDeprecation:
			art.Deprecated = true

		case KindAnnotation:
			// No state effect beyond appearing in history; annotations
			// never move a stage pointer or a version's lifecycle.
		}
	}

	for _, art := range state.Artifacts {
		finalizeStagePointers(art)
		if cfg.Kanban {
			applyKanban(art)
		}
		if cfg.MultiVersionStage {
			populateMultiVersionStages(art)
		}
		for _, vs := range art.Versions {
			vs.Deprecated = art.Deprecated
		}
	}

	state.Events = annotated
	return state
}

func (s *RegistryState) getOrCreate(name string) *ArtifactState {
	art, ok := s.Artifacts[name]
	if !ok {
		art = newArtifactState(name)
		s.Artifacts[name] = art
	}
	return art
}

// stageLast tracks, per artifact, the highest-seq assignment/unassignment
// event observed so far for each stage (spec.md §4.5: "find the
// greatest-seq event touching S across all versions"). It is kept
// unexported on ArtifactState via these accessor methods so the public
// struct stays a plain, JSON/display-friendly snapshot.
func (a *ArtifactState) stageLastEvent() map[string]Event {
	if a.stageLast == nil {
		a.stageLast = make(map[string]Event)
	}
	return a.stageLast
}

func (a *ArtifactState) setStageLastEvent(stage string, e Event) {
	a.stageLastEvent()[stage] = e
}

// finalizeStagePointers derives StagePointer and each version's
// CurrentStages from the winning assignment/unassignment event per stage.
func finalizeStagePointers(art *ArtifactState) {
	for stage, e := range art.stageLast {
		if e.Kind != KindAssignment {
			delete(art.StagePointer, stage)
			continue
		}
		version, ok := art.winningVersionFor(e)
		if !ok {
			continue
		}
		art.StagePointer[stage] = version
		if vs, exists := art.Versions[version]; exists {
			vs.CurrentStages[stage] = true
		}
	}
}

// applyKanban enforces the "at most one stage per version" view
// (spec.md §4.5): when a version's CurrentStages holds more than one
// entry, only the stage whose winning event has the greatest seq survives
// in the view; the rest are dropped from StagePointer too, since under
// kanban that version no longer "holds" them. No synthetic unassignment
// events are written — this is purely a derived view over RegistryState.
func applyKanban(art *ArtifactState) {
	for _, vs := range art.Versions {
		if len(vs.CurrentStages) <= 1 {
			continue
		}
		var keep string
		var keepSeq = -1
		for stage := range vs.CurrentStages {
			seq := art.stageLast[stage].Seq
			if seq > keepSeq {
				keep = stage
				keepSeq = seq
			}
		}
		for stage := range vs.CurrentStages {
			if stage == keep {
				continue
			}
			delete(vs.CurrentStages, stage)
			delete(art.StagePointer, stage)
		}
	}
}

// populateMultiVersionStages fills StageVersions with every version whose
// own, version-scoped stage history currently shows it assigned, per
// spec.md §4.5's multi-version-per-stage option. Unlike StagePointer,
// which picks one winner artifact-wide, this tracks each version's
// assignment currency independently.
func populateMultiVersionStages(art *ArtifactState) {
	for _, vs := range art.Versions {
		for stage, e := range vs.stageLast {
			if e.Kind == KindAssignment {
				art.StageVersions[stage] = append(art.StageVersions[stage], vs.Version)
			}
		}
	}
}

// winningVersionFor resolves the version label a stage-currency event
// points at by matching the event's target commit against every known
// version's registered commit, preferring the version whose registration
// is newest (spec.md §4.5 commit-reuse rule).
func (a *ArtifactState) winningVersionFor(e Event) (string, bool) {
	var best string
	var bestTime time.Time
	found := false
	for _, vs := range a.Versions {
		if vs.Commit != e.Commit {
			continue
		}
		if !found || vs.CreatedAt.After(bestTime) {
			best = vs.Version
			bestTime = vs.CreatedAt
			found = true
		}
	}
	return best, found
}
