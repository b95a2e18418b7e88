package lead

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/tests"
)

type senderMock struct {
	sent []Payload
	err  error
}

func (s *senderMock) Send(_ context.Context, p Payload) error {
	s.sent = append(s.sent, p)
	return s.err
}

func validLead() Lead {
	return Lead{
		FirstName:       " Ann ",
		LastName:        "Lee",
		Email:           "Ann.Lee@Example.com ",
		Phone:           "+44 (0)20 7946 0958",
		LessonTypes:     []string{"Piano", " ", "Singing"},
		StudentType:     "Adult",
		Level:           "Beginner",
		Message:         "  Weekday evenings please.\n",
		ReferralSources: []string{"Google", "Friend"},
	}
}

func newService(sender Sender) (*Service, ut.Translator) {
	validate, translator := core.NewValidate()
	return NewService(sender, validate, translator, testutil.NewLogger()), translator
}

func TestService_Submit(t *testing.T) {
	sender := new(senderMock)
	svc, _ := newService(sender)

	require.NoError(t, svc.Submit(context.Background(), validLead()))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, Payload{
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann.lee@example.com",
		Phone:          "+44 (0)20 7946 0958",
		LessonType:     "Piano, Singing",
		StudentType:    "Adult",
		Level:          "Beginner",
		Message:        "Weekday evenings please.",
		ReferralSource: "Google, Friend",
	}, sender.sent[0])
}

func TestService_Submit_optionalFields(t *testing.T) {
	sender := new(senderMock)
	svc, _ := newService(sender)
	l := validLead()
	l.Message = ""
	l.ReferralSources = nil

	require.NoError(t, svc.Submit(context.Background(), l))

	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Message)
	assert.Empty(t, sender.sent[0].ReferralSource)
}

func TestService_Submit_invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(l *Lead)
		wantField string
		wantMsg   string
	}{
		{"first name", func(l *Lead) { l.FirstName = "  " }, "first_name", "this field cannot be blank"},
		{"last name", func(l *Lead) { l.LastName = "" }, "last_name", "this field cannot be blank"},
		{"email", func(l *Lead) { l.Email = "" }, "email", "this field cannot be blank"},
		{"bad email", func(l *Lead) { l.Email = "ann@" }, "email", ""},
		{"phone", func(l *Lead) { l.Phone = "" }, "phone", "this field cannot be blank"},
		{"bad phone", func(l *Lead) { l.Phone = "call me" }, "phone", "enter a valid phone number"},
		{"short phone", func(l *Lead) { l.Phone = "12 34" }, "phone", "enter a valid phone number"},
		{"lesson types", func(l *Lead) { l.LessonTypes = nil }, "lesson_types", "at least one value is required"},
		{"blank lesson types", func(l *Lead) { l.LessonTypes = []string{" ", ""} }, "lesson_types", "at least one value is required"},
		{"student type", func(l *Lead) { l.StudentType = "" }, "student_type", "this field cannot be blank"},
		{"level", func(l *Lead) { l.Level = "\t" }, "level", "this field cannot be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(senderMock)
			svc, tr := newService(sender)
			l := validLead()
			tt.mutate(&l)

			err := svc.Submit(context.Background(), l)

			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "got %v", err)
			fields := core.TranslateErrors(vErrs, tr)
			require.Contains(t, fields, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			}
			assert.Empty(t, sender.sent, "nothing is sent for an invalid lead")
		})
	}
}

func TestService_Submit_remoteError(t *testing.T) {
	sender := &senderMock{err: &core.RemoteError{Service: "lead", StatusCode: 500, Message: "boom"}}
	svc, _ := newService(sender)

	err := svc.Submit(context.Background(), validLead())

	assert.True(t, core.IsRemote(err))
	assert.Len(t, sender.sent, 1)
}
