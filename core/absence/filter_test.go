package absence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absentee/core"
)

func student(id, name, teacher, lesson string) Student {
	s := Student{ID: id}
	if name != "" {
		s.Name = null.StringFrom(name)
	}
	if teacher != "" {
		s.MainTeacher = null.StringFrom(teacher)
	}
	if lesson != "" {
		s.NextLesson = null.StringFrom(lesson)
	}
	return s
}

func TestFilterStudents(t *testing.T) {
	may1 := core.Date{Year: 2024, Month: 5, Day: 1}

	tests := []struct {
		name        string
		students    []Student
		teacher     string
		date        core.Date
		wantMatches []Subtask
		wantSkipped []Skipped
	}{
		{
			name: "teacher and date must both match",
			students: []Student{
				student("a", "Ann", "A. Smith", "2024-05-01"),
				student("b", "Bob", "A. Smith", "2024-05-02"),
				student("c", "Cid", "B. Jones", "2024-05-01"),
			},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{{Name: "Ann", StudentID: "a"}},
			wantSkipped: []Skipped{},
		},
		{
			name:        "empty input",
			students:    nil,
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{},
			wantSkipped: []Skipped{},
		},
		{
			name: "timestamps match on their written date",
			students: []Student{
				student("a", "Ann", "A. Smith", "2024-05-01T09:30:00.000+02:00"),
				student("b", "Bob", "A. Smith", "2024-05-01T23:30:00.000-05:00"),
				student("c", "Cid", "A. Smith", "2024-04-30T23:59:00.000Z"),
			},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{{Name: "Ann", StudentID: "a"}, {Name: "Bob", StudentID: "b"}},
			wantSkipped: []Skipped{},
		},
		{
			name: "teacher match is exact",
			students: []Student{
				student("a", "Ann", "a. smith", "2024-05-01"),
				student("b", "Bob", "A. Smith ", "2024-05-01"),
			},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{},
			wantSkipped: []Skipped{},
		},
		{
			name: "input order is kept",
			students: []Student{
				student("z", "Zoe", "A. Smith", "2024-05-01"),
				student("m", "Max", "A. Smith", "2024-05-01"),
				student("a", "Ann", "A. Smith", "2024-05-01"),
			},
			teacher: "A. Smith",
			date:    may1,
			wantMatches: []Subtask{
				{Name: "Zoe", StudentID: "z"}, {Name: "Max", StudentID: "m"}, {Name: "Ann", StudentID: "a"},
			},
			wantSkipped: []Skipped{},
		},
		{
			name: "malformed records are skipped",
			students: []Student{
				student("no-teacher", "Ann", "", "2024-05-01"),
				student("no-lesson", "Bob", "A. Smith", ""),
				student("bad-lesson", "Cid", "A. Smith", "next tuesday"),
				student("no-name", "", "A. Smith", "2024-05-01"),
				student("ok", "Dee", "A. Smith", "2024-05-01"),
			},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{{Name: "Dee", StudentID: "ok"}},
			wantSkipped: []Skipped{
				{StudentID: "no-teacher", Reason: SkipNoMainTeacher},
				{StudentID: "no-lesson", Reason: SkipNoNextLesson},
				{StudentID: "bad-lesson", Reason: SkipBadNextLesson},
				{StudentID: "no-name", Reason: SkipNoStudentName},
			},
		},
		{
			name: "whitespace teacher is a non-match, not a skip",
			students: []Student{
				student("blank-teacher", "Ann", "  ", "2024-05-01"),
				student("ok", "Dee", "A. Smith", "2024-05-01"),
			},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{{Name: "Dee", StudentID: "ok"}},
			wantSkipped: []Skipped{},
		},
		{
			name:        "nameless records of other teachers are not reported",
			students:    []Student{student("x", "", "B. Jones", "2024-05-01")},
			teacher:     "A. Smith",
			date:        may1,
			wantMatches: []Subtask{},
			wantSkipped: []Skipped{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FilterStudents(tt.students, tt.teacher, tt.date)
			assert.Equal(t, tt.wantMatches, res.Matches)
			assert.Equal(t, tt.wantSkipped, res.Skipped)
		})
	}
}

func TestSubtask_TaskName(t *testing.T) {
	assert.Equal(t, "Notify Student: Ann Lee", Subtask{Name: "Ann Lee", StudentID: "a"}.TaskName())
}
