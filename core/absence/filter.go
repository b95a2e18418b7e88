package absence

import (
	"strings"

	"github.com/trezcool/absentee/core"
)

type SkipReason string

const (
	SkipNoMainTeacher SkipReason = "missing main teacher"
	SkipNoNextLesson  SkipReason = "missing next lesson"
	SkipBadNextLesson SkipReason = "invalid next lesson date"
	SkipNoStudentName SkipReason = "missing student name"
)

// Skipped is a student record left out of a scan because a field it needs is missing or malformed.
type Skipped struct {
	StudentID string     `json:"student_id"`
	Reason    SkipReason `json:"reason"`
}

type FilterResult struct {
	Matches []Subtask
	Skipped []Skipped
}

// FilterStudents selects, in input order, the students of `teacher` whose next lesson is on `date`.
// Teacher names match exactly (case-sensitive); lessons match on calendar date only.
// Records that cannot be checked are reported in Skipped; well-formed records that do not match are not.
func FilterStudents(students []Student, teacher string, date core.Date) FilterResult {
	res := FilterResult{Matches: []Subtask{}, Skipped: []Skipped{}}
	skip := func(s Student, reason SkipReason) {
		res.Skipped = append(res.Skipped, Skipped{StudentID: s.ID, Reason: reason})
	}

	for _, s := range students {
		if !s.MainTeacher.Valid || s.MainTeacher.String == "" {
			skip(s, SkipNoMainTeacher)
			continue
		}
		if !s.NextLesson.Valid || s.NextLesson.String == "" {
			skip(s, SkipNoNextLesson)
			continue
		}
		lesson, err := core.ParseDate(s.NextLesson.String)
		if err != nil {
			skip(s, SkipBadNextLesson)
			continue
		}
		if s.MainTeacher.String != teacher || lesson != date {
			continue
		}
		if !s.Name.Valid || strings.TrimSpace(s.Name.String) == "" {
			skip(s, SkipNoStudentName)
			continue
		}
		res.Matches = append(res.Matches, Subtask{Name: s.Name.String, StudentID: s.ID})
	}
	return res
}
