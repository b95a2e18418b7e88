// Package notiondb stores the absence workflow's records in Notion databases.
package notiondb

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
	"github.com/trezcool/absentee/services/notion"
)

type (
	// Client is the subset of *notion.Client the repository needs.
	Client interface {
		QueryAll(ctx context.Context, databaseID string) ([]notion.Page, error)
		CreatePage(ctx context.Context, parent notion.Parent, props notion.Properties) (notion.Page, error)
		UpdatePage(ctx context.Context, id string, props notion.Properties) (notion.Page, error)
		ArchivePage(ctx context.Context, id string) error
	}

	Databases struct {
		Teachers string
		Students string
		Tasks    string
	}

	repository struct {
		client Client
		dbs    Databases
		props  core.NotionProperties
		logger core.Logger
	}
)

var _ absence.Repository = (*repository)(nil)

func NewRepository(client Client, dbs Databases, props core.NotionProperties, logger core.Logger) absence.Repository {
	return &repository{client: client, dbs: dbs, props: props, logger: logger}
}

func NewRepositoryFromConfig(client Client, conf *core.Config, logger core.Logger) absence.Repository {
	dbs := Databases{
		Teachers: conf.Notion.TeachersDB,
		Students: conf.Notion.StudentsDB,
		Tasks:    conf.Notion.TasksDB,
	}
	return NewRepository(client, dbs, conf.Notion.Properties, logger)
}

// QueryTeachers skips teacher pages without a name; they cannot be selected anyway.
func (repo *repository) QueryTeachers(ctx context.Context) ([]absence.Teacher, error) {
	pages, err := repo.client.QueryAll(ctx, repo.dbs.Teachers)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	teachers := make([]absence.Teacher, 0, len(pages))
	var unnamed []string
	for _, page := range pages {
		name, ok := page.Properties.Title(repo.props.TeacherName)
		if !ok {
			unnamed = append(unnamed, page.ID)
			continue
		}
		teachers = append(teachers, absence.Teacher{ID: page.ID, Name: name})
	}
	if len(unnamed) > 0 {
		repo.logger.Warn("skipped teacher records without a name", map[string]interface{}{"ids": unnamed})
	}
	return teachers, nil
}

// QueryStudents decodes every student page. Fields that are missing or unset decode as null.
// On a failed page fetch the students decoded so far are returned along with the error.
func (repo *repository) QueryStudents(ctx context.Context) ([]absence.Student, error) {
	pages, err := repo.client.QueryAll(ctx, repo.dbs.Students)
	students := make([]absence.Student, 0, len(pages))
	for _, page := range pages {
		students = append(students, repo.decodeStudent(page))
	}
	if err != nil {
		return students, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *repository) decodeStudent(page notion.Page) absence.Student {
	s := absence.Student{ID: page.ID}
	if name, ok := page.Properties.Title(repo.props.StudentName); ok {
		s.Name = null.StringFrom(name)
	}
	if teacher, ok := page.Properties.Select(repo.props.MainTeacher); ok {
		s.MainTeacher = null.StringFrom(teacher)
	}
	if lesson, ok := page.Properties.Date(repo.props.NextLesson); ok {
		s.NextLesson = null.StringFrom(lesson.Start)
	}
	return s
}

func (repo *repository) CreateTask(ctx context.Context, nt absence.NewTask) (absence.Task, error) {
	props := notion.Properties{repo.props.TaskName: notion.Title(nt.Name)}
	if nt.StudentID != "" {
		props[repo.props.TaskStudent] = notion.Relation(nt.StudentID)
	}
	if nt.ParentID != "" {
		props[repo.props.TaskParent] = notion.Relation(nt.ParentID)
	}
	if repo.props.TaskDate != "" && !nt.Date.IsZero() {
		props[repo.props.TaskDate] = notion.Date(nt.Date.String())
	}

	page, err := repo.client.CreatePage(ctx, notion.InDatabase(repo.dbs.Tasks), props)
	if err != nil {
		return absence.Task{}, errors.Wrapf(err, "creating task %q", nt.Name)
	}
	return absence.Task{
		ID:         page.ID,
		Name:       nt.Name,
		StudentID:  nt.StudentID,
		ParentID:   nt.ParentID,
		SubtaskIDs: []string{},
	}, nil
}

func (repo *repository) SetSubtasks(ctx context.Context, parentID string, subtaskIDs []string) error {
	props := notion.Properties{repo.props.TaskSubtasks: notion.Relation(subtaskIDs...)}
	if _, err := repo.client.UpdatePage(ctx, parentID, props); err != nil {
		return errors.Wrapf(err, "setting subtasks of %s", parentID)
	}
	return nil
}

func (repo *repository) ArchiveTask(ctx context.Context, id string) error {
	return repo.client.ArchivePage(ctx, id)
}
