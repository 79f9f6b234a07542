package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/pkg/audit"
	"ai-study-assist-be/pkg/graph"

	"github.com/patrickmn/go-cache"
)

const EventGraphScene = "graph.scene"

var ErrGraphNotLoaded = errors.New("concept graph not loaded for this course")

// GraphLoader fetches a course graph merged with the student's mastery.
type GraphLoader interface {
	LoadGraph(ctx context.Context, studentID int64, courseID string) (graph.Dataset, error)
}

type IGraphService interface {
	Load(ctx context.Context, studentId int64, courseId string) (*dto.GraphSceneResponse, error)
	Scene(studentId int64, courseId string) (*dto.GraphSceneResponse, error)
	Click(studentId int64, courseId string, nodeId int64) (*dto.GraphSceneResponse, error)
	Hover(studentId int64, courseId string, nodeId int64) (*dto.GraphSceneResponse, error)
	Leave(studentId int64, courseId string) (*dto.GraphSceneResponse, error)
	Prerequisites(studentId int64, courseId string, nodeId int64) (*dto.PrerequisitesResponse, error)
}

type graphEntry struct {
	view *graph.View

	mu sync.RWMutex
	ds graph.Dataset
}

type graphService struct {
	loader         GraphLoader
	views          *cache.Cache
	notifier       Notifier
	eventPublisher audit.Publisher
	logger         logger.ILogger
}

// NewGraphService keeps one view per student and course. Views idle for
// longer than idle are dropped and must be loaded again.
func NewGraphService(
	loader GraphLoader,
	idle time.Duration,
	notifier Notifier,
	eventPublisher audit.Publisher,
	logger logger.ILogger,
) IGraphService {
	return &graphService{
		loader:         loader,
		views:          cache.New(idle, idle/2),
		notifier:       notifier,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func viewKey(studentId int64, courseId string) string {
	return fmt.Sprintf("graph:%d:%s", studentId, courseId)
}

// Load fetches a fresh dataset. An existing view keeps its selection and
// hover when the nodes are still present.
func (s *graphService) Load(ctx context.Context, studentId int64, courseId string) (*dto.GraphSceneResponse, error) {
	ds, err := s.loader.LoadGraph(ctx, studentId, courseId)
	if err != nil {
		s.logger.Error("GRAPH", "Failed to load concept graph", map[string]interface{}{
			"student_id": studentId,
			"course_id":  courseId,
			"error":      err.Error(),
		})
		return nil, err
	}

	entry := s.install(studentId, courseId, ds)

	s.eventPublisher.PublishGraphLoaded(ctx, studentId, courseId, len(ds.Nodes), len(ds.Edges))
	return s.changed(studentId, courseId, entry), nil
}

// install stores ds for the student and course. An existing view is reloaded
// in place so its selection survives; two first loads racing on the same key
// end up sharing the view that won the Add.
func (s *graphService) install(studentId int64, courseId string, ds graph.Dataset) *graphEntry {
	key := viewKey(studentId, courseId)
	for {
		if entry, ok := s.entry(studentId, courseId); ok {
			entry.view.Load(ds)
			entry.mu.Lock()
			entry.ds = ds
			entry.mu.Unlock()
			s.views.Set(key, entry, cache.DefaultExpiration)
			return entry
		}

		fresh := &graphEntry{view: graph.NewView(ds), ds: ds}
		if err := s.views.Add(key, fresh, cache.DefaultExpiration); err == nil {
			return fresh
		}
	}
}

func (s *graphService) entry(studentId int64, courseId string) (*graphEntry, bool) {
	x, found := s.views.Get(viewKey(studentId, courseId))
	if !found {
		return nil, false
	}
	return x.(*graphEntry), true
}

func (s *graphService) loaded(studentId int64, courseId string) (*graphEntry, error) {
	entry, ok := s.entry(studentId, courseId)
	if !ok {
		return nil, ErrGraphNotLoaded
	}
	s.views.Set(viewKey(studentId, courseId), entry, cache.DefaultExpiration)
	return entry, nil
}

func (s *graphService) Scene(studentId int64, courseId string) (*dto.GraphSceneResponse, error) {
	entry, err := s.loaded(studentId, courseId)
	if err != nil {
		return nil, err
	}
	return &dto.GraphSceneResponse{CourseId: courseId, Scene: entry.view.Scene()}, nil
}

func (s *graphService) Click(studentId int64, courseId string, nodeId int64) (*dto.GraphSceneResponse, error) {
	entry, err := s.loaded(studentId, courseId)
	if err != nil {
		return nil, err
	}
	if err := entry.view.Click(graph.NodeID(nodeId)); err != nil {
		return nil, err
	}
	return s.changed(studentId, courseId, entry), nil
}

func (s *graphService) Hover(studentId int64, courseId string, nodeId int64) (*dto.GraphSceneResponse, error) {
	entry, err := s.loaded(studentId, courseId)
	if err != nil {
		return nil, err
	}
	if err := entry.view.Hover(graph.NodeID(nodeId)); err != nil {
		return nil, err
	}
	return s.changed(studentId, courseId, entry), nil
}

func (s *graphService) Leave(studentId int64, courseId string) (*dto.GraphSceneResponse, error) {
	entry, err := s.loaded(studentId, courseId)
	if err != nil {
		return nil, err
	}
	entry.view.Leave()
	return s.changed(studentId, courseId, entry), nil
}

func (s *graphService) Prerequisites(studentId int64, courseId string, nodeId int64) (*dto.PrerequisitesResponse, error) {
	entry, err := s.loaded(studentId, courseId)
	if err != nil {
		return nil, err
	}
	if _, ok := entry.view.Node(graph.NodeID(nodeId)); !ok {
		return nil, graph.ErrUnknownNode
	}

	entry.mu.RLock()
	names := graph.Prerequisites(entry.ds, graph.NodeID(nodeId))
	entry.mu.RUnlock()

	return &dto.PrerequisitesResponse{ConceptId: nodeId, Prerequisites: names.Display()}, nil
}

func (s *graphService) changed(studentId int64, courseId string, entry *graphEntry) *dto.GraphSceneResponse {
	scene := entry.view.Scene()
	s.notifier.Send(studentId, EventGraphScene, dto.GraphSceneMessage{CourseId: courseId, Scene: scene})
	return &dto.GraphSceneResponse{CourseId: courseId, Scene: scene}
}
