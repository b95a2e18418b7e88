package testutil

import (
	"net/mail"
	"time"

	"github.com/trezcool/absentee/core"
)

// Config is a TEST configuration built without touching the environment.
func Config() *core.Config {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
	return &core.Config{
		Env:      "TEST",
		AppName:  "Absentee",
		TestMode: true,
		Timezone: loc,
		Server:   core.ServerConfig{Host: "localhost", Port: 8000},
		Notion: core.NotionConfig{
			Token:      NotionToken,
			Version:    "2022-06-28",
			PageSize:   100,
			TeachersDB: "teachers-db",
			StudentsDB: "students-db",
			TasksDB:    "tasks-db",
			Timeout:    5 * time.Second,
			Properties: core.NotionProperties{
				TeacherName:  "Name",
				StudentName:  "Name",
				MainTeacher:  "Main Teacher",
				NextLesson:   "Next Lesson",
				TaskName:     "Name",
				TaskStudent:  "Student",
				TaskParent:   "Parent Task",
				TaskSubtasks: "Sub-tasks",
			},
		},
		LeadTimeout:      5 * time.Second,
		AllowedOrigins:   []string{"*"},
		DefaultFromEmail: mail.Address{Name: "Absentee", Address: "noreply@test.local"},
		NotifyEmail:      "office@test.local",
	}
}
