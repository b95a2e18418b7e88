package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/absentee/services/notion"
)

const NotionToken = "secret_test-token"

type (
	// NotionCall is one request received by the fake server.
	NotionCall struct {
		Method string
		Path   string
		ID     string // the :id path param, if any
		Body   map[string]interface{}
	}

	// NotionFailure makes the fake server answer a call with an error body.
	NotionFailure struct {
		Status  int
		Code    string
		Message string
	}

	// NotionServer is an in-memory stand-in for the parts of the Notion API this repo uses.
	NotionServer struct {
		*httptest.Server

		// PageSize caps every query batch, whatever the client asks for.
		PageSize int
		// FailOn is consulted for every call; returning non-nil fails it.
		FailOn func(call NotionCall, n int) *NotionFailure

		mu        sync.Mutex
		databases map[string][]string // {databaseID: [pageID...]}
		pages     map[string]*notion.Page
		calls     []NotionCall
	}
)

func NewNotionServer(t *testing.T) *NotionServer {
	s := &NotionServer{
		PageSize:  100,
		databases: make(map[string][]string),
		pages:     make(map[string]*notion.Page),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.authenticate, s.record)
	e.POST("/v1/databases/:id/query", s.query)
	e.POST("/v1/pages", s.createPage)
	e.PATCH("/v1/pages/:id", s.updatePage)

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is what a notion.Client should be configured with.
func (s *NotionServer) BaseURL() string { return s.URL + "/v1" }

func (s *NotionServer) Client(t *testing.T) *notion.Client {
	c, err := notion.NewClient(notion.Options{Token: NotionToken, BaseURL: s.BaseURL(), HTTPClient: s.Server.Client()})
	if err != nil {
		t.Fatalf("notion.NewClient() failed: %v", err)
	}
	return c
}

// AddPage seeds a database and returns the page id.
func (s *NotionServer) AddPage(databaseID string, props notion.Properties) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(notion.InDatabase(databaseID), props)
}

func (s *NotionServer) Page(id string) (notion.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	if !ok {
		return notion.Page{}, false
	}
	return *page, true
}

// Pages returns the pages of a database in insertion order, archived ones included.
func (s *NotionServer) Pages(databaseID string) []notion.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]notion.Page, 0, len(s.databases[databaseID]))
	for _, id := range s.databases[databaseID] {
		pages = append(pages, *s.pages[id])
	}
	return pages
}

func (s *NotionServer) Calls() []NotionCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]NotionCall, len(s.calls))
	copy(calls, s.calls)
	return calls
}

func (s *NotionServer) insert(parent notion.Parent, props notion.Properties) string {
	id := uuid.New().String()
	s.pages[id] = &notion.Page{
		Object:      "page",
		ID:          id,
		CreatedTime: time.Now().UTC().Truncate(time.Second),
		Parent:      parent,
		Properties:  props,
	}
	if parent.DatabaseID != "" {
		s.databases[parent.DatabaseID] = append(s.databases[parent.DatabaseID], id)
	}
	return id
}

func notionError(ctx echo.Context, status int, code, msg string) error {
	return ctx.JSON(status, echo.Map{"object": "error", "status": status, "code": code, "message": msg})
}

func (s *NotionServer) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.Request().Header.Get("Authorization") != "Bearer "+NotionToken {
			return notionError(ctx, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
		}
		if ctx.Request().Header.Get("Notion-Version") == "" {
			return notionError(ctx, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
		}
		return next(ctx)
	}
}

func (s *NotionServer) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		call := NotionCall{Method: ctx.Request().Method, Path: ctx.Request().URL.Path, ID: ctx.Param("id")}
		if ctx.Request().Body != nil {
			_ = json.NewDecoder(ctx.Request().Body).Decode(&call.Body)
		}
		s.mu.Lock()
		s.calls = append(s.calls, call)
		n := len(s.calls)
		s.mu.Unlock()

		ctx.Set("call", call)
		if s.FailOn != nil {
			if f := s.FailOn(call, n); f != nil {
				return notionError(ctx, f.Status, f.Code, f.Message)
			}
		}
		return next(ctx)
	}
}

// decode re-reads the recorded body into a typed request.
func decode(ctx echo.Context, out interface{}) error {
	call, _ := ctx.Get("call").(NotionCall)
	data, err := json.Marshal(call.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *NotionServer) query(ctx echo.Context) error {
	var in struct {
		StartCursor string `json:"start_cursor"`
		PageSize    int    `json:"page_size"`
	}
	if err := decode(ctx, &in); err != nil {
		return notionError(ctx, http.StatusBadRequest, "invalid_json", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.databases[ctx.Param("id")]
	if !ok {
		return notionError(ctx, http.StatusNotFound, "object_not_found", "Could not find database with ID: "+ctx.Param("id"))
	}
	start := 0
	if in.StartCursor != "" {
		var err error
		if start, err = strconv.Atoi(in.StartCursor); err != nil || start > len(ids) {
			return notionError(ctx, http.StatusBadRequest, "validation_error", "start_cursor is invalid")
		}
	}
	size := s.PageSize
	if in.PageSize > 0 && in.PageSize < size {
		size = in.PageSize
	}
	end := start + size
	if end > len(ids) {
		end = len(ids)
	}

	res := notion.QueryResult{Object: "list", Results: make([]notion.Page, 0, end-start)}
	for _, id := range ids[start:end] {
		res.Results = append(res.Results, *s.pages[id])
	}
	if end < len(ids) {
		next := strconv.Itoa(end)
		res.HasMore = true
		res.NextCursor = &next
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *NotionServer) createPage(ctx echo.Context) error {
	var in struct {
		Parent     notion.Parent     `json:"parent"`
		Properties notion.Properties `json:"properties"`
	}
	if err := decode(ctx, &in); err != nil {
		return notionError(ctx, http.StatusBadRequest, "invalid_json", err.Error())
	}
	if in.Parent.DatabaseID == "" && in.Parent.PageID == "" {
		return notionError(ctx, http.StatusBadRequest, "validation_error", "body.parent should be defined")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.insert(in.Parent, in.Properties)
	return ctx.JSON(http.StatusOK, s.pages[id])
}

func (s *NotionServer) updatePage(ctx echo.Context) error {
	var in struct {
		Properties notion.Properties `json:"properties"`
		Archived   *bool             `json:"archived"`
	}
	if err := decode(ctx, &in); err != nil {
		return notionError(ctx, http.StatusBadRequest, "invalid_json", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[ctx.Param("id")]
	if !ok {
		return notionError(ctx, http.StatusNotFound, "object_not_found", "Could not find page with ID: "+ctx.Param("id"))
	}
	if page.Properties == nil {
		page.Properties = make(notion.Properties)
	}
	for name, prop := range in.Properties {
		page.Properties[name] = prop
	}
	if in.Archived != nil {
		page.Archived = *in.Archived
	}
	return ctx.JSON(http.StatusOK, page)
}
