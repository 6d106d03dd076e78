package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachboard/coachboard-client/internal/models"
	"github.com/coachboard/coachboard-client/internal/querycache"
	"github.com/coachboard/coachboard-client/internal/transport"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client(), opts...)
}

func withCache() Option {
	store := querycache.NewMemoryStore(time.Minute, time.Minute)
	return WithCache(querycache.New(store, time.Minute, nil))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoginSendsForm(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "coach@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "abc", "token_type": "bearer"})
	}))

	tok, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
}

func TestAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, "Incorrect username or password"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","title"],"msg":"field required"}]}`, "title: field required"},
		{"no body", http.StatusInternalServerError, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := c.CurrentUser(context.Background())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.detail, apiErr.Detail)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestListPaginationDefaults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks":
			assert.Equal(t, "0", r.URL.Query().Get("skip"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
		case "/ai/history":
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
		}
		io.WriteString(w, `[]`)
	}))

	tasks, err := c.Tasks.List(context.Background(), Page{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = c.History(context.Background(), Page{})
	require.NoError(t, err)
}

func TestTaskStatusNormalizedOnDecode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":3,"title":"Ship","status":"IN_PROGRESS","priority":"High","created_at":"2024-05-01T10:00:00"}`)
	}))

	task, err := c.Tasks.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, models.TaskPriorityHigh, task.Priority)
	assert.Equal(t, 2024, task.CreatedAt.Year())
}

func TestMutationInvalidatesCache(t *testing.T) {
	var listCalls, analyticsCalls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/tasks" && r.Method == http.MethodGet:
			listCalls.Add(1)
			io.WriteString(w, `[{"id":1,"title":"a","status":"todo","priority":"low"}]`)
		case r.URL.Path == "/tasks" && r.Method == http.MethodPost:
			var in map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "todo", in["status"])
			assert.Equal(t, "medium", in["priority"])
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": in["title"], "status": "todo", "priority": "medium"})
		case r.URL.Path == "/analytics":
			analyticsCalls.Add(1)
			io.WriteString(w, `{"totals":{"total_tasks":1}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), withCache())
	ctx := context.Background()

	_, err := c.Tasks.List(ctx, Page{})
	require.NoError(t, err)
	_, err = c.Tasks.List(ctx, Page{})
	require.NoError(t, err)
	_, err = c.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listCalls.Load())
	assert.Equal(t, int32(1), analyticsCalls.Load())

	created, err := c.Tasks.Create(ctx, &models.TaskCreate{Title: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)

	_, err = c.Tasks.List(ctx, Page{})
	require.NoError(t, err)
	_, err = c.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
	assert.Equal(t, int32(2), analyticsCalls.Load())
}

func TestCreateValidationSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	_, err := c.Risks.Create(context.Background(), &models.RiskCreate{Title: "x", Probability: models.LevelCritical})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "probability", verr.Field)
	assert.Zero(t, hits.Load())
}

func TestBearerFromChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "email": "a@b.c"})
	}))
	defer srv.Close()

	doer := transport.Chain(srv.Client(), transport.Bearer(staticToken("tok-1")))
	c := New(srv.URL, doer)

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestExportReportFilename(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/export/excel", r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=analytics_report_20240501_100000.xlsx")
		w.Write([]byte("PK\x03\x04"))
	}))

	report, err := c.ExportReport(context.Background(), ReportExcel)
	require.NoError(t, err)
	assert.Equal(t, "analytics_report_20240501_100000.xlsx", report.Filename)
	assert.Equal(t, []byte("PK\x03\x04"), report.Data)

	_, err = c.ExportReport(context.Background(), ReportFormat("csv"))
	assert.Error(t, err)
}

func TestGenerateDefaultsAndInvalidatesHistory(t *testing.T) {
	var historyCalls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai/history":
			historyCalls.Add(1)
			io.WriteString(w, `[]`)
		case "/ai/generate":
			var in models.AIGenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, models.AIRequestWorkoutPlan, in.RequestType)
			assert.Equal(t, models.DefaultAIModel, in.Model)
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true, "tokens_used": 42, "request_type": in.RequestType,
				"data": []map[string]any{{"content": "Warm up"}},
			})
		}
	}), withCache())
	ctx := context.Background()

	_, err := c.History(ctx, Page{})
	require.NoError(t, err)

	resp, err := c.Generate(ctx, &models.AIGenerateRequest{Prompt: "legs", RequestType: "Workout Plan"})
	require.NoError(t, err)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "Warm up", resp.Content())

	_, err = c.History(ctx, Page{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), historyCalls.Load())
}

func TestUploadPhotoMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/upload-photo", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "avatar.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "profile_picture": "/uploads/avatar.png"})
	}))

	user, err := c.UploadPhoto(context.Background(), "/tmp/avatar.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, user.ProfilePicture)
	assert.Equal(t, "/uploads/avatar.png", *user.ProfilePicture)
}

func TestDeleteMeSendsPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pw", body["password"])
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.DeleteMe(context.Background(), "pw"))
	assert.Error(t, c.DeleteMe(context.Background(), ""))
}

func TestCurrentUserRejectsEmptyProfile(t *testing.T) {
	for name, body := range map[string]string{
		"null":  `null`,
		"empty": ``,
		"{}":    `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))

			user, err := c.CurrentUser(context.Background())
			assert.ErrorIs(t, err, ErrMalformedProfile)
			assert.Nil(t, user)
		})
	}
}

func TestCurrentUserDecodesProfile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		io.WriteString(w, `{"id":4,"email":"coach@example.com","username":"coach"}`)
	}))

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)
	assert.Equal(t, "coach", user.Username)
}
