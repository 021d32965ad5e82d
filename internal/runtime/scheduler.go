package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// TaskStatus is the closed set of states a scheduled task can be in.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

type task struct {
	status  atomic.Value // TaskStatus
	stopReq atomic.Bool
}

// Scheduler allocates opaque task IDs and tracks their lifecycle.
// Cancellation is cooperative: Cancel sets a flag the runner polls between
// nodes and between loop iterations, never a preemptive kill.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*task
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Schedule allocates a new task ID in TaskPending state.
func (s *Scheduler) Schedule() string {
	id := uuid.NewString()
	t := &task{}
	t.status.Store(TaskPending)
	s.mu.Lock()
	s.tasks[id] = t
	s.mu.Unlock()
	return id
}

// markRunning transitions a task to TaskRunning.
func (s *Scheduler) markRunning(taskID string) {
	s.setStatus(taskID, TaskRunning)
}

// Finish transitions a task to TaskCompleted or TaskFailed.
func (s *Scheduler) Finish(taskID string, failed bool) {
	if failed {
		s.setStatus(taskID, TaskFailed)
		return
	}
	s.setStatus(taskID, TaskCompleted)
}

func (s *Scheduler) setStatus(taskID string, status TaskStatus) {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	if ok {
		t.status.Store(status)
	}
}

// Cancel requests cooperative cancellation of a running task.
func (s *Scheduler) Cancel(taskID string) error {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("runtime: unknown task %q", taskID)
	}
	t.stopReq.Store(true)
	t.status.Store(TaskCancelled)
	return nil
}

// StopRequested reports whether a cancellation was requested for taskID.
func (s *Scheduler) StopRequested(taskID string) bool {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	return ok && t.stopReq.Load()
}

// GetStatus returns the current status of a task.
func (s *Scheduler) GetStatus(taskID string) (TaskStatus, error) {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("runtime: unknown task %q", taskID)
	}
	return t.status.Load().(TaskStatus), nil
}
