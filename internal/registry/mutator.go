package registry

// TagWrite is one annotated tag the Mutator asks its caller to create.
type TagWrite struct {
	Name         string
	Message      string
	TargetCommit string
}

// TagDelete is one tag ref the Mutator asks its caller to remove.
type TagDelete struct {
	Name string
}

// MutationPlan is the Mutator's output: zero or more tags to create, in
// order (spec.md §4.7 "two tags atomically, in order"), or zero or more
// tags to delete. The caller (the Git adapter's consumer) owns applying
// the plan and rolling back a partial multi-tag write on failure.
type MutationPlan struct {
	Writes  []TagWrite
	Deletes []TagDelete
}

func (p MutationPlan) empty() bool { return len(p.Writes) == 0 && len(p.Deletes) == 0 }

// Mutator validates a requested mutation against a RegistryState and
// produces the tag(s) to create or delete. It never writes to Git itself
// (spec.md §4.7: "the Mutator re-consults RegistryState for
// preconditions"; actual tag creation belongs to the adapter).
type Mutator struct {
	State *RegistryState
}

// nextSeq computes seq = max + 1 for (artifact, key), per spec.md §3
// invariant 4. The first event for a key gets seq 1; seq 0 is reserved
// for synthesized simple-form events and never chosen by the Mutator.
func (m *Mutator) nextSeq(artifact, key string) int {
	max := 0
	for _, e := range m.State.Events {
		if e.Artifact != artifact || e.seqKey() != key {
			continue
		}
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max + 1
}

// Register implements spec.md §4.7 register(). commit is the already
// resolved target commit (the Mutator does not resolve refs itself —
// that is Git plumbing, out of the core's scope per §6).
func (m *Mutator) Register(artifact, commit, version string, bump BumpPart, force bool) (MutationPlan, error) {
	if !ValidArtifactName(artifact) {
		return MutationPlan{}, ValidationError(artifact, "invalid artifact name")
	}
	cfg := m.State.Config
	art := m.State.Artifacts[artifact]

	if art != nil && art.Deprecated && !force {
		return MutationPlan{}, PreconditionError(artifact, "artifact is deprecated; pass force to register anyway")
	}

	if version == "" {
		greatest, err := m.greatestEverRegistered(art, cfg.VersionConvention)
		if err != nil {
			return MutationPlan{}, err
		}
		version, err = BumpVersion(greatest, bump, cfg.VersionConvention)
		if err != nil {
			return MutationPlan{}, err
		}
	} else if !ValidVersion(version, cfg.VersionConvention) {
		return MutationPlan{}, ValidationError(version, "invalid version for configured convention")
	}

	if art != nil {
		if _, exists := art.Versions[version]; exists {
			return MutationPlan{}, PreconditionError(version, "version %q already registered for %q", version, artifact)
		}
	}

	e := Event{Kind: KindRegistration, Artifact: artifact, Version: version, Commit: commit}
	name, err := FormatTag(e, false)
	if err != nil {
		return MutationPlan{}, err
	}
	return MutationPlan{Writes: []TagWrite{{Name: name, TargetCommit: commit}}}, nil
}

// greatestEverRegistered returns the greatest version ever registered for
// art (regardless of deregistration), since version strings are unique
// per artifact across all history (spec.md §3) and bump must never repeat
// a name that was later deregistered.
func (m *Mutator) greatestEverRegistered(art *ArtifactState, convention Convention) (string, error) {
	if art == nil || len(art.Versions) == 0 {
		return "", nil
	}
	names := make([]string, 0, len(art.Versions))
	for v := range art.Versions {
		names = append(names, v)
	}
	return GreatestVersion(names, convention)
}

// Deregister implements spec.md §4.7 deregister(): the version must
// exist and be registered. It writes a soft `<name>@<version>!` marker;
// use DeletePlanForVersion for the hard-delete variant.
func (m *Mutator) Deregister(artifact, version string) (MutationPlan, error) {
	_, vs, err := m.requireRegisteredVersion(artifact, version)
	if err != nil {
		return MutationPlan{}, err
	}
	if vs.Deregistered {
		return MutationPlan{}, PreconditionError(version, "version %q already deregistered", version)
	}
	e := Event{Kind: KindDeregistration, Artifact: artifact, Version: version, Commit: vs.Commit}
	name, err := FormatTag(e, false)
	if err != nil {
		return MutationPlan{}, err
	}
	return MutationPlan{Writes: []TagWrite{{Name: name, TargetCommit: vs.Commit}}}, nil
}

// DeletePlanForVersion implements the delete-variant of spec.md §4.7:
// the registration tag plus every stage tag that ever touched version.
func (m *Mutator) DeletePlanForVersion(artifact, version string) (MutationPlan, error) {
	_, vs, err := m.requireRegisteredVersion(artifact, version)
	if err != nil {
		return MutationPlan{}, err
	}
	deletes := []TagDelete{{Name: vs.RegistrationEvent.Ref}}
	for _, rec := range vs.AssignmentHistory {
		deletes = append(deletes, TagDelete{Name: rec.Event.Ref})
	}
	return MutationPlan{Deletes: deletes}, nil
}

func (m *Mutator) requireRegisteredVersion(artifact, version string) (*ArtifactState, *VersionState, error) {
	art, ok := m.State.Artifacts[artifact]
	if !ok {
		return nil, nil, NotFoundError(artifact, "artifact not found")
	}
	vs, ok := art.Versions[version]
	if !ok || !vs.Registered {
		return nil, nil, NotFoundError(version, "version %q not registered for %q", version, artifact)
	}
	return art, vs, nil
}

// Assign implements spec.md §4.7 assign(): exactly one of version/ref.
// When version is empty, a version is registered at ref first, and both
// tags are returned in order so the caller can write them atomically.
func (m *Mutator) Assign(artifact, stage, version, ref, refCommit string) (MutationPlan, error) {
	cfg := m.State.Config
	if !cfg.stageAllowed(stage) {
		return MutationPlan{}, ValidationError(stage, "stage not in configured allow-list")
	}
	if (version == "") == (ref == "") {
		return MutationPlan{}, ValidationError("", "assign requires exactly one of version or ref")
	}

	var plan MutationPlan
	var commit string

	if version == "" {
		regPlan, err := m.Register(artifact, refCommit, "", BumpPatch, false)
		if err != nil {
			return MutationPlan{}, err
		}
		plan.Writes = append(plan.Writes, regPlan.Writes...)
		commit = refCommit
		// Re-derive the version just registered from the write we just
		// built, since m.State has not been re-assembled yet.
		e, ok := ParseTag(regPlan.Writes[0].Name)
		if !ok {
			return MutationPlan{}, RepositoryError(nil, "formatted an unparsable registration tag")
		}
		version = e.Version
	} else {
		_, vs, err := m.requireRegisteredVersion(artifact, version)
		if err != nil {
			return MutationPlan{}, err
		}
		commit = vs.Commit
	}

	seq := m.nextSeq(artifact, "stage:"+stage)
	e := Event{Kind: KindAssignment, Artifact: artifact, Stage: stage, Commit: commit, Seq: seq}
	name, err := FormatTag(e, true)
	if err != nil {
		return MutationPlan{}, err
	}
	plan.Writes = append(plan.Writes, TagWrite{Name: name, TargetCommit: commit})
	return plan, nil
}

// Unassign implements spec.md §4.7 unassign(): stage must currently be
// assigned for the artifact.
func (m *Mutator) Unassign(artifact, stage string) (MutationPlan, error) {
	art, ok := m.State.Artifacts[artifact]
	if !ok {
		return MutationPlan{}, PreconditionError(stage, "stage %q is not currently assigned for unknown artifact %q", stage, artifact)
	}
	version, ok := art.StagePointer[stage]
	if !ok {
		return MutationPlan{}, PreconditionError(stage, "stage %q is not currently assigned for %q", stage, artifact)
	}
	vs := art.Versions[version]

	seq := m.nextSeq(artifact, "stage:"+stage)
	e := Event{Kind: KindUnassignment, Artifact: artifact, Stage: stage, Commit: vs.Commit, Seq: seq}
	name, err := FormatTag(e, true)
	if err != nil {
		return MutationPlan{}, err
	}
	return MutationPlan{Writes: []TagWrite{{Name: name, TargetCommit: vs.Commit}}}, nil
}

// Deprecate implements spec.md §4.7 deprecate(): idempotent, a tag is
// only produced when the artifact isn't already deprecated. commit is
// the resolved target (conventionally HEAD) for the new tag.
func (m *Mutator) Deprecate(artifact, commit string) (MutationPlan, error) {
	if art, ok := m.State.Artifacts[artifact]; ok && art.Deprecated {
		return MutationPlan{}, nil
	}
	seq := m.nextSeq(artifact, "deprecation")
	e := Event{Kind: KindDeprecation, Artifact: artifact, Commit: commit, Seq: seq}
	name, err := FormatTag(e, seq > 1)
	if err != nil {
		return MutationPlan{}, err
	}
	return MutationPlan{Writes: []TagWrite{{Name: name, TargetCommit: commit}}}, nil
}

// Annotate attaches a free-text message to a registered version or a
// currently assigned stage. It fills the Event kind the spec names
// (`annotation`) but leaves unspecified (see DESIGN.md, §4.7 gap).
func (m *Mutator) Annotate(artifact, version, stage, message string) (MutationPlan, error) {
	if (version == "") == (stage == "") {
		return MutationPlan{}, ValidationError("", "annotate requires exactly one of version or stage")
	}
	if message == "" {
		return MutationPlan{}, ValidationError(message, "annotation message must not be empty")
	}

	var commit, key string
	if version != "" {
		_, vs, err := m.requireRegisteredVersion(artifact, version)
		if err != nil {
			return MutationPlan{}, err
		}
		commit = vs.Commit
		key = "annotation:version:" + version
	} else {
		art, ok := m.State.Artifacts[artifact]
		if !ok {
			return MutationPlan{}, NotFoundError(artifact, "artifact not found")
		}
		v, ok := art.StagePointer[stage]
		if !ok {
			return MutationPlan{}, PreconditionError(stage, "stage %q is not currently assigned for %q", stage, artifact)
		}
		commit = art.Versions[v].Commit
		key = "annotation:stage:" + stage
	}

	seq := m.nextSeq(artifact, key)
	e := Event{Kind: KindAnnotation, Artifact: artifact, Version: version, Stage: stage, Message: message, Commit: commit, Seq: seq}
	name, err := FormatTag(e, true)
	if err != nil {
		return MutationPlan{}, err
	}
	return MutationPlan{Writes: []TagWrite{{Name: name, Message: message, TargetCommit: commit}}}, nil
}
