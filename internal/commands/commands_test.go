package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-123"

func testBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		io.WriteString(w, `{"access_token":"`+testToken+`","token_type":"bearer"}`)
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"detail":"Could not validate credentials"}`)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("GET /users/me", authed(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":1,"email":"coach@example.com","username":"coach","full_name":"Head Coach"}`)
	}))
	mux.HandleFunc("GET /tasks", authed(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1,"title":"Plan week","status":"TODO","priority":"high"},{"id":2,"title":"Film session","status":"done","priority":"low"}]`)
	}))
	mux.HandleFunc("GET /risks", authed(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1,"title":"Injury","severity":"high","probability":"medium","impact":"high","status":"open"}]`)
	}))
	mux.HandleFunc("GET /analytics", authed(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"totals":{"total_tasks":2,"completed_tasks":1,"total_risks":1,"open_risks":1},"burndown":{"data_points":[]},"velocity_data":[{"week":"Week 1","tasks_completed":1,"average":1}]}`)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, apiURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("COACHBOARD_HOME", home)
	t.Setenv("COACHBOARD_API_URL", apiURL)
	t.Setenv("COACHBOARD_LOG_LEVEL", "error")
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "coachboard", SilenceUsage: true, SilenceErrors: true}
	RegisterFlags(root)
	Register(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoginThenListTasks(t *testing.T) {
	srv := testBackend(t)
	home := setupEnv(t, srv.URL)

	out, err := run(t, "login", "--username", "coach@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as coach")

	data, err := os.ReadFile(filepath.Join(home, "session.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), testToken)

	out, err = run(t, "tasks", "list", "--json")
	require.NoError(t, err)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "todo", tasks[0]["status"])
}

func TestLoginRejected(t *testing.T) {
	srv := testBackend(t)
	setupEnv(t, srv.URL)

	_, err := run(t, "login", "--username", "coach", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect username or password")
	assert.NotContains(t, err.Error(), "session expired")
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := testBackend(t)
	home := setupEnv(t, srv.URL)
	path := filepath.Join(home, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: stale\nuser: '{\"id\":1}'\n"), 0600))

	_, err := run(t, "tasks", "list", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.NotContains(t, string(data), "user")
}

func TestLogoutTwice(t *testing.T) {
	srv := testBackend(t)
	setupEnv(t, srv.URL)

	_, err := run(t, "login", "-u", "coach", "-p", "secret")
	require.NoError(t, err)

	_, err = run(t, "logout")
	require.NoError(t, err)
	_, err = run(t, "logout")
	require.NoError(t, err)

	out, err := run(t, "status", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "anonymous"`)
}

func TestRisksScore(t *testing.T) {
	out, err := run(t, "risks", "score", "high", "critical")
	require.NoError(t, err)
	assert.Contains(t, out, "12/12")

	_, err = run(t, "risks", "score", "critical", "low")
	assert.Error(t, err)
}

func TestAnalyticsExportJSON(t *testing.T) {
	srv := testBackend(t)
	home := setupEnv(t, srv.URL)
	_, err := run(t, "login", "-u", "coach", "-p", "secret")
	require.NoError(t, err)

	target := filepath.Join(home, "snapshot.json")
	_, err = run(t, "analytics", "export", "--format", "json", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 50.0, snap["completion_rate"])
	assert.Len(t, snap["task_distribution"], 4)
}

func TestTasksBoard(t *testing.T) {
	srv := testBackend(t)
	setupEnv(t, srv.URL)
	_, err := run(t, "login", "-u", "coach", "-p", "secret")
	require.NoError(t, err)

	out, err := run(t, "tasks", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan week")
	assert.Contains(t, out, "todo (1)")
}

func TestConfigInit(t *testing.T) {
	home := setupEnv(t, "https://coach.example.com/api/v1")

	_, err := run(t, "config", "init", "--session-store", "sqlite")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "store: sqlite")
	assert.Contains(t, string(data), "request_timeout: 10s")

	_, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, err := run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "session.db")
}

func TestCallbackFromFlagsDecodesError(t *testing.T) {
	t.Cleanup(func() { callbackError = "" })
	for raw, want := range map[string]string{
		"a%2Bb":         "a+b",
		"access_denied": "access_denied",
		"100%":          "100%",
	} {
		callbackError = raw
		assert.Equal(t, want, callbackFromFlags().Error, raw)
	}
}

func TestGetMissingItem(t *testing.T) {
	srv := testBackend(t)
	setupEnv(t, srv.URL)
	_, err := run(t, "login", "-u", "coach", "-p", "secret")
	require.NoError(t, err)

	_, err = run(t, "tasks", "get", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasks 99 not found")

	_, err = run(t, "tasks", "delete", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasks 99 not found")
}

func TestStatusJSONWithCorruptCachedUser(t *testing.T) {
	srv := testBackend(t)
	home := setupEnv(t, srv.URL)
	path := filepath.Join(home, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: "+testToken+"\nuser: '{not json'\n"), 0600))

	out, err := run(t, "status", "--json")
	require.NoError(t, err)
	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "authenticated", status["state"])
	assert.Nil(t, status["cached_user"])
}
