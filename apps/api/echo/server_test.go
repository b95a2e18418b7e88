package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/absentee/apps/api/echo"
	"github.com/trezcool/absentee/core"
	"github.com/trezcool/absentee/core/absence"
	"github.com/trezcool/absentee/core/lead"
	"github.com/trezcool/absentee/storage/inmem"
	"github.com/trezcool/absentee/tests"
)

type app struct {
	*Server
	repo   *inmemdb.Repository
	sender *senderMock
	logger *testutil.Logger
}

type senderMock struct {
	sent []lead.Payload
	err  error
}

func (s *senderMock) Send(_ context.Context, p lead.Payload) error {
	s.sent = append(s.sent, p)
	return s.err
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func student(id, name, teacher, lesson string) absence.Student {
	return absence.Student{
		ID:          id,
		Name:        null.StringFrom(name),
		MainTeacher: null.StringFrom(teacher),
		NextLesson:  null.StringFrom(lesson),
	}
}

// now is 2024-04-30 12:00 in London, so the default date is 2024-05-01.
func setup(t *testing.T) app {
	t.Helper()
	conf := testutil.Config()
	logger := testutil.NewLogger()
	validate, translator := core.NewValidate()

	repo := inmemdb.NewRepository(
		[]absence.Teacher{{ID: "t1", Name: "A. Smith"}, {ID: "t2", Name: "B. Jones"}},
		[]absence.Student{
			student("s1", "Ann", "A. Smith", "2024-05-01"),
			student("s2", "Bob", "B. Jones", "2024-05-01"),
			student("s3", "Cid", "A. Smith", "2024-05-01T17:00:00.000+01:00"),
		},
	)
	now := time.Date(2024, 4, 30, 11, 0, 0, 0, time.UTC)
	absenceSvc := absence.NewService(absence.Options{
		Repo:     repo,
		Logger:   logger,
		Validate: validate,
		Location: conf.Timezone,
		Now:      func() time.Time { return now },
	})
	sender := new(senderMock)
	leadSvc := lead.NewService(sender, validate, translator, logger)

	srv := NewServer(Options{
		Conf:           conf,
		Logger:         logger,
		Translator:     translator,
		AbsenceSvc:     absenceSvc,
		LeadSvc:        leadSvc,
		DisableReqLogs: true,
	})
	return app{Server: srv, repo: repo, sender: sender, logger: logger}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func marshal(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, a app, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestServer_home(t *testing.T) {
	a := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Absentee API!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_cors(t *testing.T) {
	a := setup(t)
	req, rec := newRequest(http.MethodOptions, "/v1/leads")
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAbsenceApi_teachers(t *testing.T) {
	a := setup(t)
	teachers := marshal(t, []absence.Teacher{{ID: "t1", Name: "A. Smith"}, {ID: "t2", Name: "B. Jones"}})

	runHTTPTests(t, a, []httpTest{
		{name: "list", method: http.MethodGet, path: "/v1/teachers", wantCode: http.StatusOK, wantData: teachers},
		{name: "trailing slash", method: http.MethodGet, path: "/v1/teachers/", wantCode: http.StatusOK, wantData: teachers},
		{name: "defaults", method: http.MethodGet, path: "/v1/absences/defaults", wantCode: http.StatusOK, wantData: []byte(`{"date":"2024-05-01"}`)},
	})
	assert.Equal(t, []string{inmemdb.OpQueryTeachers}, a.repo.Ops(), "cached after the first load")

	a.repo.SetTeachers(absence.Teacher{ID: "t3", Name: "C. New"})
	runHTTPTests(t, a, []httpTest{{
		name: "refresh", method: http.MethodPost, path: "/v1/teachers/refresh",
		wantCode: http.StatusOK, wantData: marshal(t, []absence.Teacher{{ID: "t3", Name: "C. New"}}),
	}})
}

func TestAbsenceApi_create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		a := setup(t)
		req, rec := newRequest(http.MethodPost, "/v1/absences", []byte(`{"teacher":"A. Smith","date":"2024-05-01"}`))
		a.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var report absence.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, absence.NoticeSuccess, report.Notice.Level)
		assert.Equal(t, []absence.Subtask{{Name: "Ann", StudentID: "s1"}, {Name: "Cid", StudentID: "s3"}}, report.Subtasks)
		require.NotNil(t, report.Task)
		assert.Len(t, report.Task.SubtaskIDs, 2)
		assert.Len(t, a.repo.Tasks(), 3)
	})

	t.Run("date defaults to tomorrow", func(t *testing.T) {
		a := setup(t)
		req, rec := newRequest(http.MethodPost, "/v1/absences", []byte(`{"teacher":"B. Jones"}`))
		a.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var report absence.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "2024-05-01", report.Date.String())
		assert.Len(t, report.Subtasks, 1)
	})

	a := setup(t)
	runHTTPTests(t, a, []httpTest{
		{
			name: "nobody to notify", method: http.MethodPost, path: "/v1/absences",
			body: []byte(`{"teacher":"A. Smith","date":"2024-05-02"}`), wantCode: http.StatusOK,
			wantData: []byte(`{
				"teacher": "A. Smith", "date": "2024-05-02", "task": null, "subtasks": [], "skipped": [],
				"notice": {"level": "info", "message": "No students of A. Smith have a lesson on 2024-05-02; no tasks were created."}
			}`),
		},
		{
			name: "unknown teacher", method: http.MethodPost, path: "/v1/absences",
			body: []byte(`{"teacher":"A Smith","date":"2024-05-01"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"teacher": "unknown teacher; did you mean \"A. Smith\"?"}`),
		},
		{
			name: "blank teacher", method: http.MethodPost, path: "/v1/absences",
			body: []byte(`{"teacher":"  "}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"teacher": "this field cannot be blank"}`),
		},
		{
			name: "bad date", method: http.MethodPost, path: "/v1/absences",
			body: []byte(`{"teacher":"A. Smith","date":"tomorrow"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "bad json", method: http.MethodPost, path: "/v1/absences",
			body: []byte(`{"teacher":`), wantCode: http.StatusBadRequest,
		},
	})
}

func TestAbsenceApi_create_remoteFailures(t *testing.T) {
	body := []byte(`{"teacher":"A. Smith","date":"2024-05-01"}`)

	t.Run("partial write reports orphans", func(t *testing.T) {
		a := setup(t)
		a.repo.FailOn = inmemdb.FailNth(inmemdb.OpCreateTask, 3)
		req, rec := newRequest(http.MethodPost, "/v1/absences", body)
		a.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		var res struct {
			Error       string   `json:"error"`
			OrphanedIDs []string `json:"orphaned_ids"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		tasks := a.repo.Tasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, []string{tasks[0].ID, tasks[1].ID}, res.OrphanedIDs)
		assert.Contains(t, res.Error, "injected failure")
	})

	t.Run("student query fails", func(t *testing.T) {
		a := setup(t)
		a.repo.FailOn = inmemdb.FailNth(inmemdb.OpQueryStudents, 1)
		req, rec := newRequest(http.MethodPost, "/v1/absences", body)
		a.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		var res httpErr
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Contains(t, res.Error, "querying students")
		assert.Empty(t, a.repo.Tasks())
	})
}

func TestLeadApi_submit(t *testing.T) {
	valid := map[string]interface{}{
		"first_name":       "Ann",
		"last_name":        "Lee",
		"email":            "ann@example.com",
		"phone":            "07946 095800",
		"lesson_types":     []string{"Piano", "Singing"},
		"student_type":     "Adult",
		"level":            "Beginner",
		"referral_sources": []string{"Google"},
	}
	without := func(key string) []byte {
		m := make(map[string]interface{}, len(valid))
		for k, v := range valid {
			if k != key {
				m[k] = v
			}
		}
		return marshal(t, m)
	}

	t.Run("sent", func(t *testing.T) {
		a := setup(t)
		runHTTPTests(t, a, []httpTest{{
			name: "valid", method: http.MethodPost, path: "/v1/leads", body: marshal(t, valid),
			wantCode: http.StatusOK, wantData: marshal(t, echo.Map{"success": lead.SuccessMessage}),
		}})
		require.Len(t, a.sender.sent, 1)
		assert.Equal(t, "Piano, Singing", a.sender.sent[0].LessonType)
	})

	for _, field := range []string{"first_name", "last_name", "email", "phone", "lesson_types", "student_type", "level"} {
		t.Run("missing "+field, func(t *testing.T) {
			a := setup(t)
			req, rec := newRequest(http.MethodPost, "/v1/leads", without(field))
			a.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var res map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Contains(t, res, field)
			assert.Empty(t, a.sender.sent, "no POST for an invalid lead")
		})
	}

	t.Run("endpoint rejects", func(t *testing.T) {
		a := setup(t)
		a.sender.err = &core.RemoteError{Service: "lead endpoint", StatusCode: 500, Message: "quota exceeded"}
		runHTTPTests(t, a, []httpTest{{
			name: "502", method: http.MethodPost, path: "/v1/leads", body: marshal(t, valid),
			wantCode: http.StatusBadGateway, wantData: marshal(t, httpErr{Error: "sending lead: lead endpoint: 500: quota exceeded"}),
		}})
	})
}
