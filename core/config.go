package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // the "tomorrow" default needs zone data on minimal images

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	NotionProperties struct {
		TeacherName  string
		StudentName  string
		MainTeacher  string
		NextLesson   string
		TaskName     string
		TaskStudent  string
		TaskParent   string
		TaskSubtasks string
		TaskDate     string // optional; the parent task's absence date is only written when set
	}

	NotionConfig struct {
		Token      string
		BaseURL    string
		Version    string
		PageSize   int
		TeachersDB string
		StudentsDB string
		TasksDB    string
		Timeout    time.Duration
		Properties NotionProperties
	}

	ServerConfig struct {
		Host            string
		Port            int
		DebugHost       string // expvar and pprof; disabled when empty
		ShutdownTimeout time.Duration
	}

	Config struct {
		Env      string
		Build    string
		AppName  string
		Debug    bool
		TestMode bool

		Timezone *time.Location
		Server   ServerConfig
		Notion   NotionConfig

		LeadEndpoint   string
		LeadTimeout    time.Duration
		AllowedOrigins []string

		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail mail.Address
		NotifyEmail      string
	}
)

func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

// CheckNotion reports whether the notifier can talk to Notion at all.
func (c *Config) CheckNotion() error {
	if c.Notion.Token == "" {
		return NewConfigError("NOTION_API_TOKEN", "the Notion API token is not set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Absentee")
	v.SetDefault("build", "dev")
	v.SetDefault("timezone", "Europe/London")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("allowedOrigins", "*") // comma-separated

	v.SetDefault("notion.baseURL", "https://api.notion.com/v1")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.pageSize", 100)
	v.SetDefault("notion.timeout", 30*time.Second)
	v.SetDefault("notion.teachersDB", "9f0e4ffc7c1449b1915ebd199e2d9655")
	v.SetDefault("notion.studentsDB", "83219e99ee3b4866a3f88c491a7d76c0")
	v.SetDefault("notion.tasksDB", "e058d21ab92d43a1bb44f173dff5d578")

	v.SetDefault("notion.properties.teacherName", "Name")
	v.SetDefault("notion.properties.studentName", "Name")
	v.SetDefault("notion.properties.mainTeacher", "Main Teacher")
	v.SetDefault("notion.properties.nextLesson", "Next Lesson")
	v.SetDefault("notion.properties.taskName", "Name")
	v.SetDefault("notion.properties.taskStudent", "Student")
	v.SetDefault("notion.properties.taskParent", "Parent Task")
	v.SetDefault("notion.properties.taskSubtasks", "Sub-tasks")
	v.SetDefault("notion.properties.taskDate", "")

	v.SetDefault("lead.endpoint", "")
	v.SetDefault("lead.timeout", 15*time.Second)

	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Absentee <noreply@localhost>")
	v.SetDefault("notifyEmail", "")
}

// envKeys maps config keys to their environment variable names.
var envKeys = map[string]string{
	"debug":             "DEBUG",
	"testMode":          "TEST_MODE",
	"appName":           "APP_NAME",
	"build":             "BUILD",
	"timezone":          "TIMEZONE",
	"allowedOrigins":    "ALLOWED_ORIGINS",
	"notion.token":      "NOTION_API_TOKEN",
	"notion.baseURL":    "NOTION_BASE_URL",
	"notion.version":    "NOTION_VERSION",
	"notion.pageSize":   "NOTION_PAGE_SIZE",
	"notion.timeout":    "NOTION_TIMEOUT",
	"notion.teachersDB": "NOTION_TEACHERS_DB",
	"notion.studentsDB": "NOTION_STUDENTS_DB",
	"notion.tasksDB":    "NOTION_TASKS_DB",

	"server.host":            "SERVER_HOST",
	"server.port":            "SERVER_PORT",
	"server.debugHost":       "SERVER_DEBUG_HOST",
	"server.shutdownTimeout": "SERVER_SHUTDOWN_TIMEOUT",

	"notion.properties.teacherName":  "NOTION_PROPERTIES_TEACHER_NAME",
	"notion.properties.studentName":  "NOTION_PROPERTIES_STUDENT_NAME",
	"notion.properties.mainTeacher":  "NOTION_PROPERTIES_MAIN_TEACHER",
	"notion.properties.nextLesson":   "NOTION_PROPERTIES_NEXT_LESSON",
	"notion.properties.taskName":     "NOTION_PROPERTIES_TASK_NAME",
	"notion.properties.taskStudent":  "NOTION_PROPERTIES_TASK_STUDENT",
	"notion.properties.taskParent":   "NOTION_PROPERTIES_TASK_PARENT",
	"notion.properties.taskSubtasks": "NOTION_PROPERTIES_TASK_SUBTASKS",
	"notion.properties.taskDate":     "NOTION_PROPERTIES_TASK_DATE",

	"lead.endpoint":    "LEAD_ENDPOINT",
	"lead.timeout":     "LEAD_TIMEOUT",
	"rollbarToken":     "ROLLBAR_TOKEN",
	"sendgridApiKey":   "SENDGRID_API_KEY",
	"defaultFromEmail": "DEFAULT_FROM_EMAIL",
	"notifyEmail":      "NOTIFY_EMAIL",
}

func bindEnv(v *viper.Viper) {
	for key, name := range envKeys {
		_ = v.BindEnv(key, name)
	}
}

// loadDotEnv loads config/.env.<env> if it exists (ignored if it does not).
func loadDotEnv(env string) error {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "config"
	}
	path := filepath.Join(dir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "loading %s", path)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}
	return nil
}

// NewConfig reads the configuration from defaults, the dotenv file of the current ENV and the environment.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	if env == "PROD" {
		v.SetDefault("debug", false)
	}
	bindEnv(v)

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, NewConfigError("TIMEZONE", err.Error())
	}
	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		return nil, NewConfigError("DEFAULT_FROM_EMAIL", err.Error())
	}

	conf := &Config{
		Env:      env,
		Build:    v.GetString("build"),
		AppName:  v.GetString("appName"),
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Timezone: loc,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Notion: NotionConfig{
			Token:      v.GetString("notion.token"),
			BaseURL:    strings.TrimRight(v.GetString("notion.baseURL"), "/"),
			Version:    v.GetString("notion.version"),
			PageSize:   v.GetInt("notion.pageSize"),
			TeachersDB: v.GetString("notion.teachersDB"),
			StudentsDB: v.GetString("notion.studentsDB"),
			TasksDB:    v.GetString("notion.tasksDB"),
			Timeout:    v.GetDuration("notion.timeout"),
			Properties: NotionProperties{
				TeacherName:  v.GetString("notion.properties.teacherName"),
				StudentName:  v.GetString("notion.properties.studentName"),
				MainTeacher:  v.GetString("notion.properties.mainTeacher"),
				NextLesson:   v.GetString("notion.properties.nextLesson"),
				TaskName:     v.GetString("notion.properties.taskName"),
				TaskStudent:  v.GetString("notion.properties.taskStudent"),
				TaskParent:   v.GetString("notion.properties.taskParent"),
				TaskSubtasks: v.GetString("notion.properties.taskSubtasks"),
				TaskDate:     v.GetString("notion.properties.taskDate"),
			},
		},
		LeadEndpoint:     v.GetString("lead.endpoint"),
		LeadTimeout:      v.GetDuration("lead.timeout"),
		AllowedOrigins:   CleanStrings(strings.Split(v.GetString("allowedOrigins"), ",")),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: *from,
		NotifyEmail:      v.GetString("notifyEmail"),
	}
	return conf, nil
}
