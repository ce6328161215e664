package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionThreadID(t *testing.T) {
	first := sessionThreadID("")
	second := sessionThreadID("")
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second, "each interactive session gets its own thread")

	assert.Equal(t, "work", sessionThreadID(" work "))
}

func TestOneShotThreadID(t *testing.T) {
	fsys := afero.NewMemMapFs()
	stateDir := "/state/taskmate"

	first, err := oneShotThreadID(fsys, stateDir, "", false)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	saved, err := afero.ReadFile(fsys, filepath.Join(stateDir, chatThreadFile))
	require.NoError(t, err)
	assert.Equal(t, first, strings.TrimSpace(string(saved)))

	again, err := oneShotThreadID(fsys, stateDir, "", false)
	require.NoError(t, err)
	assert.Equal(t, first, again, "one-shot calls keep their conversation")

	explicit, err := oneShotThreadID(fsys, stateDir, "errands", false)
	require.NoError(t, err)
	assert.Equal(t, "errands", explicit)

	fresh, err := oneShotThreadID(fsys, stateDir, "", true)
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)

	after, err := oneShotThreadID(fsys, stateDir, "", false)
	require.NoError(t, err)
	assert.Equal(t, fresh, after)
}

func TestChatCmd_OneShotReusesThread(t *testing.T) {
	var threads []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		threads = append(threads, body["threadId"])
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	defer ts.Close()

	t.Setenv("XDG_STATE_HOME", t.TempDir())

	output, err := execute(t, "chat", "hello", "--url", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, output, "ok")

	_, err = execute(t, "chat", "and again", "--url", ts.URL)
	require.NoError(t, err)

	require.Len(t, threads, 2)
	assert.NotEmpty(t, threads[0])
	assert.NotEqual(t, "1", threads[0], "no shared default thread")
	assert.Equal(t, threads[0], threads[1])
}
