package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	mu    sync.Mutex
	ds    graph.Dataset
	err   error
	calls int
	gate  chan struct{}
}

func (s *stubLoader) LoadGraph(context.Context, int64, string) (graph.Dataset, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return s.ds, s.err
}

func (r *recordingAudit) PublishGraphLoaded(_ context.Context, _ int64, courseId string, _, _ int) {
	r.mu.Lock()
	r.graphs = append(r.graphs, courseId)
	r.mu.Unlock()
}

func biologyGraph() graph.Dataset {
	return graph.Dataset{
		Nodes: []graph.Node{
			{ID: 1, Name: "Cells", Importance: 0.5, X: 0, Y: 0},
			{ID: 2, Name: "Respiration", Importance: 0.8, X: 100, Y: 100, Completed: true},
			{ID: 3, Name: "Glycolysis", Importance: 0.3, X: 200, Y: 50},
		},
		Edges: []graph.Edge{
			{Source: 1, Target: 2, Relation: graph.RelationPrerequisite, Confidence: 0.9},
			{Source: 3, Target: 2, Relation: graph.RelationPartOf, Confidence: 0.7},
		},
	}
}

func newGraphFixture(t *testing.T) (IGraphService, *stubLoader, *fakeNotifier, *recordingAudit) {
	t.Helper()
	loader := &stubLoader{ds: biologyGraph()}
	notifier := &fakeNotifier{}
	rec := &recordingAudit{}
	svc := NewGraphService(loader, time.Minute, notifier, rec, logger.NewNopLogger())
	return svc, loader, notifier, rec
}

func TestGraphService_LoadRendersScene(t *testing.T) {
	svc, _, notifier, rec := newGraphFixture(t)

	res, err := svc.Load(context.Background(), 5, "bio-101")

	require.NoError(t, err)
	assert.Equal(t, "bio-101", res.CourseId)
	assert.False(t, res.Scene.Empty)
	assert.Len(t, res.Scene.Nodes, 3)
	assert.Len(t, res.Scene.Edges, 2)
	assert.Nil(t, res.Scene.Details)
	assert.Equal(t, []string{"bio-101"}, rec.graphs)
	assert.Len(t, notifier.ofType(EventGraphScene), 1)
}

func TestGraphService_ActionsNeedLoadedGraph(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)

	_, err := svc.Scene(5, "bio-101")
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Click(5, "bio-101", 1)
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
}

func TestGraphService_ClickSelectsAndToggles(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	_, err := svc.Load(context.Background(), 5, "bio-101")
	require.NoError(t, err)

	res, err := svc.Click(5, "bio-101", 2)
	require.NoError(t, err)
	require.NotNil(t, res.Scene.Details)
	assert.Equal(t, "Respiration", res.Scene.Details.Name)
	assert.Equal(t, []string{"Cells"}, res.Scene.Details.PrerequisitesDisplay)
	assert.Equal(t, []string{"Glycolysis"}, res.Scene.Details.RelatedDisplay)

	res, err = svc.Click(5, "bio-101", 2)
	require.NoError(t, err)
	assert.Nil(t, res.Scene.Details)

	_, err = svc.Click(5, "bio-101", 42)
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
}

func TestGraphService_HoverAndLeave(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	_, err := svc.Load(context.Background(), 5, "bio-101")
	require.NoError(t, err)

	res, err := svc.Hover(5, "bio-101", 3)
	require.NoError(t, err)
	assert.Nil(t, res.Scene.Details)
	hovered := 0
	for _, n := range res.Scene.Nodes {
		if n.Hovered {
			hovered++
			assert.Equal(t, graph.NodeID(3), n.ID)
		}
	}
	assert.Equal(t, 1, hovered)

	res, err = svc.Leave(5, "bio-101")
	require.NoError(t, err)
	for _, n := range res.Scene.Nodes {
		assert.False(t, n.Hovered)
	}
}

func TestGraphService_ViewsAreScopedToStudentAndCourse(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	_, err := svc.Load(context.Background(), 5, "bio-101")
	require.NoError(t, err)

	_, err = svc.Scene(6, "bio-101")
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
	_, err = svc.Scene(5, "chem-200")
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
}

func TestGraphService_ReloadKeepsSelection(t *testing.T) {
	svc, loader, _, _ := newGraphFixture(t)
	ctx := context.Background()
	_, err := svc.Load(ctx, 5, "bio-101")
	require.NoError(t, err)
	_, err = svc.Click(5, "bio-101", 1)
	require.NoError(t, err)

	res, err := svc.Load(ctx, 5, "bio-101")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
	require.NotNil(t, res.Scene.Details)
	assert.Equal(t, "Cells", res.Scene.Details.Name)
}

func TestGraphService_LoadFailure(t *testing.T) {
	svc, loader, notifier, _ := newGraphFixture(t)
	loader.err = errors.New("mastery: boom")

	_, err := svc.Load(context.Background(), 5, "bio-101")

	require.Error(t, err)
	assert.Empty(t, notifier.ofType(EventGraphScene))
	_, err = svc.Scene(5, "bio-101")
	assert.ErrorIs(t, err, ErrGraphNotLoaded)
}

func TestGraphService_Prerequisites(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	_, err := svc.Load(context.Background(), 5, "bio-101")
	require.NoError(t, err)

	res, err := svc.Prerequisites(5, "bio-101", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cells"}, res.Prerequisites)

	res, err = svc.Prerequisites(5, "bio-101", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{graph.NoneLabel}, res.Prerequisites)

	_, err = svc.Prerequisites(5, "bio-101", 99)
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
}

func TestGraphService_PartOfCountsAsRelated(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	_, err := svc.Load(context.Background(), 5, "bio-101")
	require.NoError(t, err)

	res, err := svc.Click(5, "bio-101", 3)
	require.NoError(t, err)
	require.NotNil(t, res.Scene.Details)
	assert.Equal(t, graph.Names{"Respiration"}, res.Scene.Details.Related)
	assert.Equal(t, []string{graph.NoneLabel}, res.Scene.Details.PrerequisitesDisplay)
}

func TestGraphService_ConcurrentFirstLoadsShareOneView(t *testing.T) {
	svc, loader, _, _ := newGraphFixture(t)
	loader.gate = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Load(ctx, 5, "bio-101")
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool {
		loader.mu.Lock()
		defer loader.mu.Unlock()
		return loader.calls == 4
	}, time.Second, 5*time.Millisecond)
	close(loader.gate)
	wg.Wait()

	_, err := svc.Click(5, "bio-101", 2)
	require.NoError(t, err)
	_, err = svc.Load(ctx, 5, "bio-101")
	require.NoError(t, err)

	res, err := svc.Scene(5, "bio-101")
	require.NoError(t, err)
	require.NotNil(t, res.Scene.Details)
	assert.Equal(t, "Respiration", res.Scene.Details.Name)
}

func TestGraphService_InstallRacesConvergeOnOneEntry(t *testing.T) {
	svc, _, _, _ := newGraphFixture(t)
	gs := svc.(*graphService)

	const n = 8
	entries := make([]*graphEntry, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			entries[i] = gs.install(5, "bio-101", biologyGraph())
		}(i)
	}
	close(start)
	wg.Wait()

	stored, ok := gs.entry(5, "bio-101")
	require.True(t, ok)
	for _, e := range entries {
		assert.Same(t, stored, e)
	}
}
