package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTag(t *testing.T, tag string, commit string, ts time.Time) Event {
	t.Helper()
	e, ok := ParseTag(tag)
	require.True(t, ok, "tag %q must parse", tag)
	e.Commit = commit
	e.Timestamp = ts
	return e
}

func at(seconds int) time.Time {
	return time.Unix(1700000000+int64(seconds), 0)
}

func TestAssembleBasicRegistrationAndAssignment(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1#staging#1", "c1", at(1)),
		mustTag(t, "model1@v2", "c2", at(2)),
		mustTag(t, "model1#prod#1", "c2", at(3)),
	}

	state := Assemble(events, DefaultConfig())
	art := state.Artifacts["model1"]
	require.NotNil(t, art)

	assert.Equal(t, "v1", art.StagePointer["staging"])
	assert.Equal(t, "v2", art.StagePointer["prod"])
	assert.True(t, art.Versions["v1"].Registered)
	assert.True(t, art.Versions["v2"].Registered)
}

func TestAssembleDuplicateRegistrationIsConflict(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@v1", "c2", at(1)),
	}
	state := Assemble(events, DefaultConfig())
	// the second, conflicting registration must not overwrite the first
	assert.Equal(t, "c1", state.Artifacts["model1"].Versions["v1"].Commit)
	assert.True(t, state.Events[1].Conflict)
}

func TestAssembleAssignmentWithUnknownCommitIsOrphan(t *testing.T) {
	events := []Event{
		mustTag(t, "model1#prod#1", "c-never-registered", at(0)),
	}
	state := Assemble(events, DefaultConfig())
	require.Len(t, state.Events, 1)
	assert.True(t, state.Events[0].Orphan)
	assert.Empty(t, state.Artifacts["model1"].StagePointer)
}

func TestAssembleDeregistrationOfUnknownVersionIsOrphan(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v9!", "c1", at(0)),
	}
	state := Assemble(events, DefaultConfig())
	assert.True(t, state.Events[0].Orphan)
}

func TestAssembleDeprecationClearedByRegistrationOrAssignment(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@deprecated", "c1", at(1)),
		mustTag(t, "model1@v2", "c2", at(2)),
	}
	state := Assemble(events, DefaultConfig())
	assert.False(t, state.Artifacts["model1"].Deprecated, "a later registration clears deprecation")

	events2 := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@deprecated", "c1", at(1)),
		mustTag(t, "model1#prod#1", "c1", at(2)),
	}
	state2 := Assemble(events2, DefaultConfig())
	assert.False(t, state2.Artifacts["model1"].Deprecated, "a later assignment also clears deprecation")

	events3 := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1#prod#1", "c1", at(1)),
		mustTag(t, "model1@deprecated", "c1", at(2)),
		mustTag(t, "model1#prod!#2", "c1", at(3)),
	}
	state3 := Assemble(events3, DefaultConfig())
	assert.True(t, state3.Artifacts["model1"].Deprecated, "unassignment never clears deprecation")
}

func TestAssembleKanbanKeepsOnlyLatestStagePerVersion(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1#staging#1", "c1", at(1)),
		mustTag(t, "model1#prod#2", "c1", at(2)),
	}
	cfg := DefaultConfig()
	cfg.Kanban = true
	state := Assemble(events, cfg)
	art := state.Artifacts["model1"]

	_, hasStaging := art.StagePointer["staging"]
	assert.False(t, hasStaging, "kanban mode keeps only the higher-seq stage per version")
	assert.Equal(t, "v1", art.StagePointer["prod"])
}

func TestAssembleMultiVersionStage(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@v2", "c2", at(1)),
		mustTag(t, "model1#prod#1", "c1", at(2)),
		mustTag(t, "model1#prod#2", "c2", at(3)),
	}
	cfg := DefaultConfig()
	cfg.MultiVersionStage = true
	state := Assemble(events, cfg)
	art := state.Artifacts["model1"]

	assert.ElementsMatch(t, []string{"v1", "v2"}, art.StageVersions["prod"])
}

func TestAssembleCommitEventCarriesMeta(t *testing.T) {
	e := Event{
		Kind:      KindCommit,
		Artifact:  "model1",
		Commit:    "c1",
		Timestamp: at(0),
		Meta:      ArtifactMeta{Type: "model", Path: "models/model1"},
	}
	state := Assemble([]Event{e}, DefaultConfig())
	assert.Equal(t, "models/model1", state.Artifacts["model1"].Meta.Path)
}
