package absence

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/absentee/core"
)

type (
	Repository interface {
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		// QueryStudents returns every student record, following pagination to the end.
		QueryStudents(ctx context.Context) ([]Student, error)
		CreateTask(ctx context.Context, nt NewTask) (Task, error)
		// SetSubtasks replaces the parent's subtask references in a single write.
		SetSubtasks(ctx context.Context, parentID string, subtaskIDs []string) error
		ArchiveTask(ctx context.Context, id string) error
	}

	Options struct {
		Repo     Repository
		Logger   core.Logger
		Validate *validator.Validate
		Location *time.Location // "tomorrow" is computed in this zone

		// optional: summary email after tasks are created
		MailSvc     core.EmailService
		NotifyEmail string

		Now func() time.Time // mockable
	}

	Service struct {
		repo        Repository
		logger      core.Logger
		validate    *validator.Validate
		loc         *time.Location
		mailSvc     core.EmailService
		notifyEmail string
		now         func() time.Time
		teachers    *TeacherCache
	}

	reportEmailData struct {
		Teacher  string
		Date     string
		TaskName string
		Students []string
		Skipped  int
	}
)

func NewService(opts Options) *Service {
	svc := &Service{
		repo:        opts.Repo,
		logger:      opts.Logger,
		validate:    opts.Validate,
		loc:         opts.Location,
		mailSvc:     opts.MailSvc,
		notifyEmail: opts.NotifyEmail,
		now:         opts.Now,
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	svc.teachers = NewTeacherCache(svc.repo.QueryTeachers)
	return svc
}

// Teachers returns the session's cached teacher list, loading it on first use.
func (svc *Service) Teachers(ctx context.Context) ([]Teacher, error) {
	teachers, err := svc.teachers.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading teachers")
	}
	return teachers, nil
}

func (svc *Service) RefreshTeachers(ctx context.Context) ([]Teacher, error) {
	teachers, err := svc.teachers.Refresh(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "refreshing teachers")
	}
	return teachers, nil
}

func (svc *Service) InvalidateTeachers() {
	svc.teachers.Invalidate()
}

// DefaultDate is tomorrow in the configured zone.
func (svc *Service) DefaultDate() core.Date {
	return core.Tomorrow(svc.now(), svc.loc)
}

// CreateTasks creates a task for the absent teacher with one subtask per student whose next lesson is that day.
// When no student matches nothing is written and the report carries an info notice.
func (svc *Service) CreateTasks(ctx context.Context, na NewAbsence) (Report, error) {
	reportProgress(ctx, PhaseTeachers)
	teachers, err := svc.Teachers(ctx)
	if err != nil {
		return Report{}, err
	}
	if err = na.Validate(svc.validate, teachers); err != nil {
		return Report{}, err
	}

	reportProgress(ctx, PhaseStudents)
	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		svc.logger.Error("querying students", err)
		return Report{}, errors.Wrap(err, "querying students")
	}

	res := FilterStudents(students, na.Teacher, na.Date)
	report := Report{
		Teacher:  na.Teacher,
		Date:     na.Date,
		Subtasks: res.Matches,
		Skipped:  res.Skipped,
	}
	if n := len(res.Skipped); n > 0 {
		svc.logger.Warn(fmt.Sprintf("skipped %d of %d student record(s)", n, len(students)), map[string]interface{}{
			"skipped": res.Skipped,
		})
	}

	if len(res.Matches) == 0 {
		report.Notice = Notice{
			Level:   NoticeInfo,
			Message: fmt.Sprintf("No students of %s have a lesson on %s; no tasks were created.", na.Teacher, na.Date),
		}
		return report, nil
	}

	reportProgress(ctx, PhaseTasks)
	task, err := svc.CreateTaskWithSubtasks(ctx, NewTask{Name: na.Teacher, Date: na.Date}, res.Matches)
	if err != nil {
		svc.logger.Error("creating tasks", err, map[string]interface{}{"teacher": na.Teacher, "date": na.Date.String()})
		return report, errors.Wrap(err, "creating tasks")
	}

	report.Task = &task
	report.Notice = Notice{
		Level:   NoticeSuccess,
		Message: fmt.Sprintf("Tasks and subtasks created successfully: %d student(s) of %s to notify.", len(res.Matches), na.Teacher),
	}
	svc.logger.Info(report.Notice.Message, map[string]interface{}{"task": task.ID, "date": na.Date.String()})
	svc.sendReport(report)
	return report, nil
}

// CreateTaskWithSubtasks creates the parent, then one child per subtask in order, then links the children
// to the parent with a single update. It stops at the first failure and rolls nothing back: once the parent
// exists, failures are returned as *PartialWriteError naming what was left behind.
func (svc *Service) CreateTaskWithSubtasks(ctx context.Context, parent NewTask, subtasks []Subtask) (Task, error) {
	task, err := svc.repo.CreateTask(ctx, NewTask{Name: parent.Name, Date: parent.Date})
	if err != nil {
		return Task{}, errors.Wrap(err, "creating parent task")
	}

	ids := make([]string, 0, len(subtasks))
	for _, st := range subtasks {
		child, err := svc.repo.CreateTask(ctx, NewTask{Name: st.TaskName(), StudentID: st.StudentID, ParentID: task.ID})
		if err != nil {
			return task, &PartialWriteError{
				ParentID:   task.ID,
				SubtaskIDs: ids,
				Err:        errors.Wrapf(err, "creating subtask for %s", st.Name),
			}
		}
		ids = append(ids, child.ID)
	}

	if len(ids) > 0 {
		if err := svc.repo.SetSubtasks(ctx, task.ID, ids); err != nil {
			return task, &PartialWriteError{ParentID: task.ID, SubtaskIDs: ids, Err: errors.Wrap(err, "linking subtasks")}
		}
	}
	task.SubtaskIDs = ids
	return task, nil
}

// ArchiveTasks archives tasks one by one, stopping at the first failure.
// It is the manual cleanup for records left behind by a *PartialWriteError.
func (svc *Service) ArchiveTasks(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := svc.repo.ArchiveTask(ctx, id); err != nil {
			return errors.Wrapf(err, "archiving task %s", id)
		}
	}
	return nil
}

func (svc *Service) sendReport(report Report) {
	if svc.mailSvc == nil || svc.notifyEmail == "" || report.Task == nil {
		return
	}
	to, err := mail.ParseAddress(svc.notifyEmail)
	if err != nil {
		svc.logger.Warn("invalid notify email", err)
		return
	}

	data := reportEmailData{
		Teacher:  report.Teacher,
		Date:     report.Date.String(),
		TaskName: report.Task.Name,
		Skipped:  len(report.Skipped),
	}
	for _, st := range report.Subtasks {
		data.Students = append(data.Students, st.Name)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      fmt.Sprintf("%s is absent on %s", report.Teacher, data.Date),
		TemplateName: "absence_report",
		TemplateData: data,
	})
}
