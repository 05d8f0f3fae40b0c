package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildState(t *testing.T, cfg Config) *RegistryState {
	t.Helper()
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1#staging#1", "c1", at(1)),
		mustTag(t, "model1@v2", "c2", at(2)),
		mustTag(t, "model1#prod#1", "c2", at(3)),
		mustTag(t, "model2@v1", "c3", at(4)),
	}
	return Assemble(events, cfg)
}

func TestShowListsArtifactsSorted(t *testing.T) {
	state := buildState(t, DefaultConfig())
	rows := state.Show()
	require.Len(t, rows, 2)
	assert.Equal(t, "model1", rows[0].Name)
	assert.Equal(t, "v2", rows[0].Latest)
	assert.Equal(t, "model2", rows[1].Name)
}

func TestShowArtifactListsVersionsSorted(t *testing.T) {
	state := buildState(t, DefaultConfig())
	rows, err := state.ShowArtifact("model1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "v1", rows[0].Version)
	assert.Equal(t, []string{"staging"}, rows[0].CurrentStages)
	assert.Equal(t, "v2", rows[1].Version)
	assert.Equal(t, []string{"prod"}, rows[1].CurrentStages)
}

func TestShowArtifactUnknownReturnsNotFound(t *testing.T) {
	state := buildState(t, DefaultConfig())
	_, err := state.ShowArtifact("nope")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, err.(*Error).Kind)
}

func TestLatestPicksNewestEligibleVersion(t *testing.T) {
	state := buildState(t, DefaultConfig())
	latest, err := state.Latest("model1")
	require.NoError(t, err)
	assert.Equal(t, "v2", latest)
}

func TestLatestExcludesDeprecatedArtifact(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@deprecated", "c1", at(1)),
	}
	state := Assemble(events, DefaultConfig())
	_, err := state.Latest("model1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, err.(*Error).Kind)
}

func TestWhichReturnsStagePointer(t *testing.T) {
	state := buildState(t, DefaultConfig())
	version, ok := state.Which("model1", "prod")
	require.True(t, ok)
	assert.Equal(t, "v2", version)

	_, ok = state.Which("model1", "canary")
	assert.False(t, ok)
}

func TestWhichAllSinglePointerMode(t *testing.T) {
	state := buildState(t, DefaultConfig())
	versions, err := state.WhichAll("model1", "prod")
	require.NoError(t, err)
	assert.Equal(t, []string{"v2"}, versions)
}

func TestWhichAllMultiVersionMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MultiVersionStage = true
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1@v2", "c2", at(1)),
		mustTag(t, "model1#prod#1", "c1", at(2)),
		mustTag(t, "model1#prod#2", "c2", at(3)),
	}
	state := Assemble(events, cfg)
	versions, err := state.WhichAll("model1", "prod")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, versions)
}

func TestDescribeReturnsMeta(t *testing.T) {
	events := []Event{
		{Kind: KindCommit, Artifact: "model1", Commit: "c1", Timestamp: at(0), Meta: ArtifactMeta{Type: "model", Path: "models/model1"}},
		mustTag(t, "model1@v1", "c1", at(1)),
	}
	state := Assemble(events, DefaultConfig())
	meta, err := state.Describe("model1")
	require.NoError(t, err)
	assert.Equal(t, "model", meta.Type)
}

func TestDescribeUnknownArtifactIsNotFound(t *testing.T) {
	state := buildState(t, DefaultConfig())
	_, err := state.Describe("nope")
	require.Error(t, err)
}

func TestHistoryFiltersByArtifactAndOrders(t *testing.T) {
	state := buildState(t, DefaultConfig())
	all := state.History("")
	assert.Len(t, all, 5)

	only1 := state.History("model1")
	assert.Len(t, only1, 4)
	for _, e := range only1 {
		assert.Equal(t, "model1", e.Artifact)
	}
}

func TestHistoryDegradesSimpleFormStage(t *testing.T) {
	events := []Event{
		mustTag(t, "model1@v1", "c1", at(0)),
		mustTag(t, "model1#prod", "c1", at(1)), // simple form, no seq
	}
	state := Assemble(events, DefaultConfig())
	history := state.History("model1")

	var conflictCount int
	for _, e := range history {
		if e.Kind == KindAssignment && e.Conflict {
			conflictCount++
		}
	}
	assert.Equal(t, 1, conflictCount, "the simple-form assignment collapses into a single conflict marker")
}

func TestCheckRefRecognizesEnrichedEvent(t *testing.T) {
	state := buildState(t, DefaultConfig())
	result := state.CheckRef("model1@v1")
	assert.True(t, result.Recognized)
	assert.Equal(t, KindRegistration, result.Event.Kind)
}

func TestCheckRefUnrecognizedRef(t *testing.T) {
	state := buildState(t, DefaultConfig())
	result := state.CheckRef("not-a-tag-at-all")
	assert.False(t, result.Recognized)
}

func TestCheckRefRecognizesUnseenButParsableTag(t *testing.T) {
	state := buildState(t, DefaultConfig())
	result := state.CheckRef("model3@v1")
	assert.True(t, result.Recognized)
	assert.Equal(t, KindRegistration, result.Event.Kind)
}
