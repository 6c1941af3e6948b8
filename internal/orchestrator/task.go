package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// task is the orchestrator's internal record for one run: the public
// model.Task snapshot plus runtime-only bookkeeping the transport never
// sees directly.
type task struct {
	mu sync.Mutex

	id          string
	agent       string
	status      model.TaskStatus
	progress    int
	message     string
	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	result      *model.TaskResult
	taskErr     *model.TaskError

	original string
	unified  *model.UnifiedSections

	cancel func()
}

func newTask(agentName string) *task {
	return &task{
		id:        uuid.NewString(),
		agent:     agentName,
		status:    model.TaskPending,
		progress:  0,
		createdAt: time.Now(),
	}
}

func (t *task) snapshotLocked() Snapshot {
	return Snapshot{
		TaskID:      t.id,
		Agent:       t.agent,
		Status:      t.status,
		Progress:    t.progress,
		Message:     t.message,
		CreatedAt:   t.createdAt,
		StartedAt:   t.startedAt,
		CompletedAt: t.completedAt,
		Result:      t.result,
		Error:       t.taskErr,
	}
}

// Snapshot is the read-only, transport-facing view of a task.
type Snapshot struct {
	TaskID      string             `json:"task_id"`
	Agent       string             `json:"agent"`
	Status      model.TaskStatus   `json:"status"`
	Progress    int                `json:"progress"`
	Message     string             `json:"message"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Result      *model.TaskResult  `json:"result,omitempty"`
	Error       *model.TaskError   `json:"error,omitempty"`
}

// store is the process-wide task table. All access to a task's mutable
// fields is serialized through the owning task's own mutex; the store's
// mutex only protects the map of task pointers itself.
type store struct {
	mu    sync.RWMutex
	tasks map[string]*task
}

func newStore() *store {
	return &store{tasks: make(map[string]*task)}
}

func (s *store) put(t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.id] = t
}

func (s *store) get(id string) (*task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// sweep deletes every terminal task whose completion timestamp is older
// than cutoff, returning the number removed.
func (s *store) sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		t.mu.Lock()
		terminal := t.status == model.TaskCompleted || t.status == model.TaskFailed
		completedAt := t.completedAt
		t.mu.Unlock()
		if terminal && completedAt != nil && completedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}
