package absence

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/absentee/core"
)

var (
	unknownTeacherText = "unknown teacher"
	requiredText       = "this field is required"

	// suggestions below this similarity are noise
	suggestMinRatio = .6
)

// Validate cleans the request and checks it against the known teachers.
func (na *NewAbsence) Validate(validate *validator.Validate, teachers []Teacher) error {
	na.Teacher = core.CleanString(na.Teacher)

	if err := validate.Struct(na); err != nil {
		return err
	}
	if na.Date.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: requiredText})
	}
	for _, t := range teachers {
		if t.Name == na.Teacher {
			return nil
		}
	}

	msg := unknownTeacherText
	if s := suggestTeacher(na.Teacher, teachers); s != "" {
		msg = fmt.Sprintf("%s; did you mean %q?", unknownTeacherText, s)
	}
	return core.NewValidationError(nil, core.FieldError{Field: "teacher", Error: msg})
}

// suggestTeacher returns the known name closest to `name`, if any is close enough.
func suggestTeacher(name string, teachers []Teacher) string {
	var (
		best      string
		bestRatio float64
	)
	a := strings.Split(strings.ToLower(name), "")
	for _, t := range teachers {
		ratio := difflib.NewMatcher(a, strings.Split(strings.ToLower(t.Name), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = t.Name, ratio
		}
	}
	if bestRatio < suggestMinRatio {
		return ""
	}
	return best
}
