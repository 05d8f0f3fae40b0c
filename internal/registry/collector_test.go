package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tags    []TagRef
	commits []CommitRef
	blobs   map[string][]byte
	head    string
	headErr error
}

func (f *fakeSource) ResolveRef(ref string) (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	return f.head, nil
}

func (f *fakeSource) ReadFileAt(commit, path string) ([]byte, error) {
	data, ok := f.blobs[commit+":"+path]
	if !ok {
		return nil, fakeNotFound{}
	}
	return data, nil
}

func (f *fakeSource) Tags(ctx context.Context) ([]TagRef, error) {
	return f.tags, nil
}

func (f *fakeSource) CommitsInScope(ctx context.Context, scope Scope) ([]CommitRef, error) {
	return f.commits, nil
}

func TestCollectorCollectOrdersTagAndCommitEvents(t *testing.T) {
	src := &fakeSource{
		tags: []TagRef{
			{Name: "model1@v1", TargetCommit: "c1", Timestamp: at(5)},
			{Name: "model1#prod#1", TargetCommit: "c1", Timestamp: at(10)},
			{Name: "not-a-recognized-tag", TargetCommit: "c1", Timestamp: at(1)},
		},
		commits: []CommitRef{
			{SHA: "c1", Timestamp: at(0)},
		},
		blobs: map[string][]byte{
			"c1:artifacts.yaml": []byte("model1:\n  type: model\n  path: models/model1\n"),
		},
	}
	c := &Collector{Source: src, Config: DefaultConfig()}
	events, err := c.Collect(context.Background(), Scope{Kind: ScopeHead})
	require.NoError(t, err)

	require.Len(t, events, 3, "the unrecognized tag is silently dropped")
	assert.Equal(t, KindCommit, events[0].Kind, "the synthetic commit event sorts first by timestamp")
	assert.Equal(t, KindRegistration, events[1].Kind)
	assert.Equal(t, KindAssignment, events[2].Kind)
}

func TestCollectorCollectReadsIndexPerCommit(t *testing.T) {
	src := &fakeSource{
		commits: []CommitRef{
			{SHA: "c1", Timestamp: at(0)},
			{SHA: "c2", Timestamp: at(1)},
		},
		blobs: map[string][]byte{
			"c1:artifacts.yaml": []byte("model1:\n  type: model\n  path: models/model1\n"),
			"c2:artifacts.yaml": []byte("model1:\n  type: model\n  path: models/model1\nmodel2:\n  type: model\n  path: models/model2\n"),
		},
	}
	c := &Collector{Source: src, Config: DefaultConfig(), Concurrency: 2}
	events, err := c.Collect(context.Background(), Scope{Kind: ScopeAllCommits})
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, KindCommit, e.Kind)
	}
}

func TestCollectorCollectWarnsOnMalformedIndexWithoutFailing(t *testing.T) {
	src := &fakeSource{
		commits: []CommitRef{{SHA: "c1", Timestamp: at(0)}},
		blobs: map[string][]byte{
			"c1:artifacts.yaml": []byte("not: [valid: yaml: at: all"),
		},
		head: "c2", // c1 is not HEAD
	}
	var warned string
	c := &Collector{Source: src, Config: DefaultConfig(), Warn: func(msg string) { warned = msg }}
	events, err := c.Collect(context.Background(), Scope{Kind: ScopeHead})
	require.NoError(t, err, "a malformed index at a non-HEAD commit warns and continues, it never fails the collection")
	assert.Empty(t, events)
	assert.Contains(t, warned, "c1")
}

func TestCollectorCollectFailsOnMalformedIndexAtHEAD(t *testing.T) {
	src := &fakeSource{
		commits: []CommitRef{{SHA: "c1", Timestamp: at(0)}},
		blobs: map[string][]byte{
			"c1:artifacts.yaml": []byte("not: [valid: yaml: at: all"),
		},
		head: "c1",
	}
	c := &Collector{Source: src, Config: DefaultConfig()}
	_, err := c.Collect(context.Background(), Scope{Kind: ScopeHead})
	require.Error(t, err, "a malformed index at HEAD must be a fatal ConfigError")
	assert.Equal(t, KindConfig, err.(*Error).Kind)
}

func TestCollectorCollectRespectsCancelledContext(t *testing.T) {
	src := &fakeSource{}
	c := &Collector{Source: src, Config: DefaultConfig()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Collect(ctx, Scope{Kind: ScopeHead})
	require.Error(t, err)
	assert.Equal(t, KindCancelled, err.(*Error).Kind)
}

func TestCollectorCollectStableSortsBySeqThenRef(t *testing.T) {
	same := at(0)
	src := &fakeSource{
		tags: []TagRef{
			{Name: "model1#prod#2", TargetCommit: "c1", Timestamp: same},
			{Name: "model1#prod#1", TargetCommit: "c1", Timestamp: same},
		},
	}
	c := &Collector{Source: src, Config: DefaultConfig()}
	events, err := c.Collect(context.Background(), Scope{Kind: ScopeHead})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Seq)
	assert.Equal(t, 2, events[1].Seq)
}
