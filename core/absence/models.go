package absence

import (
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absentee/core"
)

const subtaskNameFormat = "Notify Student: %s"

type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Student is decoded from the students collection. Fields that may be missing upstream are null-able.
type Student struct {
	ID          string      `json:"id"`
	Name        null.String `json:"name"`
	MainTeacher null.String `json:"main_teacher"`
	NextLesson  null.String `json:"next_lesson"` // raw date value; normalised by FilterStudents
}

// Subtask is a student to notify.
type Subtask struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

func (s Subtask) TaskName() string {
	return fmt.Sprintf(subtaskNameFormat, s.Name)
}

type NewTask struct {
	Name      string
	StudentID string    // optional
	ParentID  string    // optional
	Date      core.Date // optional
}

type Task struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StudentID  string   `json:"student_id,omitempty"`
	ParentID   string   `json:"parent_id,omitempty"`
	SubtaskIDs []string `json:"subtask_ids"`
}

// NewAbsence is what an operator submits: who is absent, and when.
type NewAbsence struct {
	Teacher string    `json:"teacher" validate:"notblank"`
	Date    core.Date `json:"date"`
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Report is the outcome of one "create tasks" action.
type Report struct {
	Teacher  string    `json:"teacher"`
	Date     core.Date `json:"date"`
	Task     *Task     `json:"task"`
	Subtasks []Subtask `json:"subtasks"`
	Skipped  []Skipped `json:"skipped"`
	Notice   Notice    `json:"notice"`
}

func (r Report) Created() bool { return r.Task != nil }
