package lead

import (
	"strings"

	"github.com/trezcool/absentee/core"
)

const listSep = ", "

// Lead is an enquiry submitted through the public form.
type Lead struct {
	FirstName       string   `json:"first_name" validate:"notblank"`
	LastName        string   `json:"last_name" validate:"notblank"`
	Email           string   `json:"email" validate:"notblank,email"`
	Phone           string   `json:"phone" validate:"notblank,phone"`
	LessonTypes     []string `json:"lesson_types" validate:"min=1"`
	StudentType     string   `json:"student_type" validate:"notblank"`
	Level           string   `json:"level" validate:"notblank"`
	Message         string   `json:"message"`          // optional
	ReferralSources []string `json:"referral_sources"` // optional
}

// Payload is the wire form expected by the intake endpoint: nine string fields.
type Payload struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	LessonType     string `json:"lessonType"`
	StudentType    string `json:"studentType"`
	Level          string `json:"level"`
	Message        string `json:"message"`
	ReferralSource string `json:"referralSource"`
}

// Clean trims every field and drops blank list entries.
func (l *Lead) Clean() {
	l.FirstName = core.CleanString(l.FirstName)
	l.LastName = core.CleanString(l.LastName)
	l.Email = core.CleanString(l.Email, true)
	l.Phone = core.CleanString(l.Phone)
	l.LessonTypes = core.CleanStrings(l.LessonTypes)
	l.StudentType = core.CleanString(l.StudentType)
	l.Level = core.CleanString(l.Level)
	l.Message = strings.TrimSpace(l.Message)
	l.ReferralSources = core.CleanStrings(l.ReferralSources)
}

func (l Lead) Payload() Payload {
	return Payload{
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		LessonType:     strings.Join(l.LessonTypes, listSep),
		StudentType:    l.StudentType,
		Level:          l.Level,
		Message:        l.Message,
		ReferralSource: strings.Join(l.ReferralSources, listSep),
	}
}
