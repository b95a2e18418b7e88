// Package inmemdb is an in-memory absence.Repository that records every call; tests inject failures into it.
package inmemdb

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
)

// ErrNotFound is returned for unknown task ids.
var ErrNotFound = errors.New("task not found")

const (
	OpQueryTeachers = "QueryTeachers"
	OpQueryStudents = "QueryStudents"
	OpCreateTask    = "CreateTask"
	OpSetSubtasks   = "SetSubtasks"
	OpArchiveTask   = "ArchiveTask"
)

type (
	Call struct {
		Op       string
		Task     absence.NewTask // OpCreateTask
		ID       string          // OpSetSubtasks, OpArchiveTask
		Subtasks []string        // OpSetSubtasks
	}

	// FailFunc decides whether the n-th call (1-based, all ops counted) fails.
	FailFunc func(call Call, n int) error

	Repository struct {
		mu       sync.RWMutex
		teachers []absence.Teacher
		students []absence.Student
		tasks    map[string]*StoredTask
		order    []string
		calls    []Call

		FailOn FailFunc
	}

	StoredTask struct {
		absence.Task
		Archived bool
	}
)

var _ absence.Repository = (*Repository)(nil)

func NewRepository(teachers []absence.Teacher, students []absence.Student) *Repository {
	return &Repository{
		teachers: teachers,
		students: students,
		tasks:    make(map[string]*StoredTask),
	}
}

// FailNth fails the n-th call of op (1-based) with a remote error.
func FailNth(op string, nth int) FailFunc {
	seen := 0
	return func(call Call, _ int) error {
		if call.Op != op {
			return nil
		}
		seen++
		if seen == nth {
			return &core.RemoteError{Service: "inmem", StatusCode: 503, Code: "service_unavailable", Message: "injected failure"}
		}
		return nil
	}
}

func (repo *Repository) record(call Call) error {
	repo.calls = append(repo.calls, call)
	if repo.FailOn != nil {
		return repo.FailOn(call, len(repo.calls))
	}
	return nil
}

func (repo *Repository) Calls() []Call {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	calls := make([]Call, len(repo.calls))
	copy(calls, repo.calls)
	return calls
}

// Ops is Calls reduced to operation names.
func (repo *Repository) Ops() []string {
	calls := repo.Calls()
	ops := make([]string, 0, len(calls))
	for _, c := range calls {
		ops = append(ops, c.Op)
	}
	return ops
}

// Tasks returns stored tasks in creation order.
func (repo *Repository) Tasks() []StoredTask {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	tasks := make([]StoredTask, 0, len(repo.order))
	for _, id := range repo.order {
		tasks = append(tasks, *repo.tasks[id])
	}
	return tasks
}

func (repo *Repository) SetTeachers(teachers ...absence.Teacher) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.teachers = teachers
}

func (repo *Repository) QueryTeachers(context.Context) ([]absence.Teacher, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.record(Call{Op: OpQueryTeachers}); err != nil {
		return nil, err
	}
	teachers := make([]absence.Teacher, len(repo.teachers))
	copy(teachers, repo.teachers)
	return teachers, nil
}

func (repo *Repository) QueryStudents(context.Context) ([]absence.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.record(Call{Op: OpQueryStudents}); err != nil {
		return nil, err
	}
	students := make([]absence.Student, len(repo.students))
	copy(students, repo.students)
	return students, nil
}

func (repo *Repository) CreateTask(_ context.Context, nt absence.NewTask) (absence.Task, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.record(Call{Op: OpCreateTask, Task: nt}); err != nil {
		return absence.Task{}, err
	}

	task := absence.Task{
		ID:         uuid.New().String(),
		Name:       nt.Name,
		StudentID:  nt.StudentID,
		ParentID:   nt.ParentID,
		SubtaskIDs: []string{},
	}
	repo.tasks[task.ID] = &StoredTask{Task: task}
	repo.order = append(repo.order, task.ID)
	return task, nil
}

func (repo *Repository) SetSubtasks(_ context.Context, parentID string, subtaskIDs []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	ids := make([]string, len(subtaskIDs))
	copy(ids, subtaskIDs)
	if err := repo.record(Call{Op: OpSetSubtasks, ID: parentID, Subtasks: ids}); err != nil {
		return err
	}

	task, ok := repo.tasks[parentID]
	if !ok {
		return ErrNotFound
	}
	task.SubtaskIDs = ids
	return nil
}

func (repo *Repository) ArchiveTask(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err := repo.record(Call{Op: OpArchiveTask, ID: id}); err != nil {
		return err
	}

	task, ok := repo.tasks[id]
	if !ok {
		return ErrNotFound
	}
	task.Archived = true
	return nil
}
