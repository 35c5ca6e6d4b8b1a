package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/board/internal/adapters/repository"
	"github.com/taskmaster/board/internal/application/services"
	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/ports"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	backend := repository.NewFileBackend(filepath.Join(t.TempDir(), "db.json"))
	store := services.NewRecordStore(backend, logger.NewNop())

	e := echo.New()
	api := e.Group("")
	for _, name := range []string{"users", "projects", "tasks", "sessions"} {
		NewCollectionHandler(name, store, logger.NewNop()).Register(api)
	}
	api.GET("/summary", NewSummaryHandler(store, logger.NewNop()).GetSummary)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCollectionHandler_CreateAndGet(t *testing.T) {
	e := newTestRouter(t)

	rec := doRequest(e, http.MethodPost, "/tasks", `{"id":"t1","title":"Write docs","estimatedHours":2.50}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"t1","title":"Write docs","estimatedHours":2.50}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "2.50")

	rec = doRequest(e, http.MethodGet, "/tasks/t1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"t1","title":"Write docs","estimatedHours":2.50}`, rec.Body.String())
}

func TestCollectionHandler_ListEmpty(t *testing.T) {
	e := newTestRouter(t)

	rec := doRequest(e, http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCollectionHandler_ListFilters(t *testing.T) {
	e := newTestRouter(t)

	for _, body := range []string{
		`{"id":"t1","projectId":"p1","status":"pendiente"}`,
		`{"id":"t2","projectId":"p1","status":"completada"}`,
		`{"id":"t3","projectId":"p2","status":"pendiente"}`,
	} {
		require.Equal(t, http.StatusCreated, doRequest(e, http.MethodPost, "/tasks", body).Code)
	}

	rec := doRequest(e, http.MethodGet, "/tasks?projectId=p1&_sort=title", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0]["id"])
	assert.Equal(t, "t2", tasks[1]["id"])

	rec = doRequest(e, http.MethodGet, "/tasks?projectId=p1&status=pendiente", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0]["id"])
}

func TestCollectionHandler_NotFound(t *testing.T) {
	e := newTestRouter(t)

	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/users/ghost", ""},
		{http.MethodPatch, "/users/ghost", `{"name":"x"}`},
		{http.MethodPut, "/users/ghost", `{"id":"ghost"}`},
		{http.MethodDelete, "/users/ghost", ""},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			rec := doRequest(e, tc.method, tc.target, tc.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"message":"Not found"}`, rec.Body.String())
		})
	}
}

func TestCollectionHandler_InvalidBody(t *testing.T) {
	e := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(e, http.MethodPost, "/users", `{"id":"u1"}`).Code)

	for _, body := range []string{`[1,2]`, `{"id":`, `"text"`, `null`} {
		rec := doRequest(e, http.MethodPost, "/users", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"message":"Invalid request body"}`, rec.Body.String())

		rec = doRequest(e, http.MethodPatch, "/users/u1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := doRequest(e, http.MethodGet, "/users", "")
	assert.JSONEq(t, `[{"id":"u1"}]`, rec.Body.String())
}

func TestCollectionHandler_PatchReplaceDelete(t *testing.T) {
	e := newTestRouter(t)

	require.Equal(t, http.StatusCreated,
		doRequest(e, http.MethodPost, "/projects", `{"id":1,"title":"Portal","progress":0,"category":"web"}`).Code)

	rec := doRequest(e, http.MethodPatch, "/projects/1", `{"progress":25}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"title":"Portal","progress":25,"category":"web"}`, rec.Body.String())

	rec = doRequest(e, http.MethodPut, "/projects/1", `{"id":1,"title":"Portal v2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"title":"Portal v2"}`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/projects/1", "")
	assert.JSONEq(t, `{"id":1,"title":"Portal v2"}`, rec.Body.String())

	rec = doRequest(e, http.MethodDelete, "/projects/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(e, http.MethodDelete, "/projects/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectionHandler_CollectionsAreIsolated(t *testing.T) {
	e := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doRequest(e, http.MethodPost, "/sessions", `{"id":"x"}`).Code)

	assert.Equal(t, http.StatusNotFound, doRequest(e, http.MethodGet, "/users/x", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/sessions/x", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(e, http.MethodGet, "/comments", "").Code)
}

func TestSummaryHandler(t *testing.T) {
	e := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doRequest(e, http.MethodPost, "/tasks", `{"id":"t1","status":"pendiente"}`).Code)
	require.Equal(t, http.StatusCreated, doRequest(e, http.MethodPost, "/projects", `{"id":"p1","status":"planificacion","progress":10}`).Code)

	rec := doRequest(e, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Counts           map[string]int `json:"counts"`
		TasksByStatus    map[string]int `json:"tasksByStatus"`
		ProjectsByStatus map[string]int `json:"projectsByStatus"`
		OpenTasks        int            `json:"openTasks"`
		AverageProgress  float64        `json:"averageProjectProgress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.Equal(t, 1, summary.Counts["tasks"])
	assert.Equal(t, 1, summary.TasksByStatus["pendiente"])
	assert.Equal(t, 1, summary.ProjectsByStatus["planificacion"])
	assert.Equal(t, 1, summary.OpenTasks)
	assert.InDelta(t, 10.0, summary.AverageProgress, 0.001)
}

// downBackend fails every call as an unreachable backend would
type downBackend struct{}

func (downBackend) Load(ctx context.Context) ([]byte, error) {
	return nil, fmt.Errorf("%w: connection refused", ports.ErrBackendUnavailable)
}

func (downBackend) Save(ctx context.Context, payload []byte) error {
	return fmt.Errorf("%w: connection refused", ports.ErrBackendUnavailable)
}

func (downBackend) Ping(ctx context.Context) error { return nil }
func (downBackend) Name() string                   { return "down" }
func (downBackend) Close() error                   { return nil }

func TestCollectionHandler_StoreErrorLogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	appLogger := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	store := services.NewRecordStore(downBackend{}, logger.NewNop())

	e := echo.New()
	e.Use(middleware.RequestID())
	NewCollectionHandler("tasks", store, appLogger).Register(e.Group(""))

	rec := doRequest(e, http.MethodGet, "/tasks/t1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	requestID := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, requestID)

	entries := logs.FilterMessage("Get record failed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, requestID, fields["request_id"])
	assert.Equal(t, "tasks", fields["collection"])
	assert.Equal(t, "t1", fields["record_id"])
	assert.Contains(t, fields["error"], "document backend unavailable")
}
