package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `
router:
  title: Shop
routes:
  - path: ""
    component: home
  - path: products/:id
    component: product
components:
  - name: home
    title: Home
  - name: product
    title: Product
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopYAML), 0o644))
	return path
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunSession_PersistsToFileStore(t *testing.T) {
	dir := t.TempDir()
	opts := RunOptions{
		ConfigPath: writeConfig(t),
		SessionID:  "cli",
		Headless:   true,
		Store:      StoreOptions{Dir: dir},
	}
	out := &bytes.Buffer{}
	err := RunSession(testCtx(t), opts, strings.NewReader("products/3\n"), out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "`/products/3`")
	assert.NotContains(t, out.String(), ">>>")

	st, err := file.New(dir).Load(testCtx(t), "cli")
	require.NoError(t, err)
	assert.Equal(t, "/products/3", st.URL())

	// A second run resumes the stored history.
	out.Reset()
	err = RunSession(testCtx(t), opts, strings.NewReader(":back\n"), out)
	require.NoError(t, err)
	st, err = file.New(dir).Load(testCtx(t), "cli")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)
	assert.Len(t, st.History, 2)
}

func TestRunSession_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	opts := RunOptions{
		ConfigPath: writeConfig(t),
		SessionID:  "ro",
		Headless:   true,
		ReadOnly:   true,
		Store:      StoreOptions{Dir: dir},
	}
	out := &bytes.Buffer{}
	require.NoError(t, RunSession(testCtx(t), opts, strings.NewReader("products/1\n"), out))

	st, err := file.New(dir).Load(testCtx(t), "ro")
	require.NoError(t, err)
	assert.Equal(t, "/", st.URL())
}

func TestRunSession_MissingConfig(t *testing.T) {
	opts := RunOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Headless:   true,
		Store:      StoreOptions{Dir: t.TempDir()},
	}
	err := RunSession(testCtx(t), opts, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestSetupPersistence_InvalidMask(t *testing.T) {
	_, err := SetupPersistence(StoreOptions{Dir: t.TempDir(), Mask: []string{"("}}, logging.NewNop())
	assert.ErrorContains(t, err, "invalid mask pattern")
}

func TestExecute_WatchRejectsJSON(t *testing.T) {
	err := Execute(testCtx(t), RunOptions{Watch: true, JSON: true}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWatchSessionID(t *testing.T) {
	a := watchSessionID("a/waypoint.yaml")
	assert.Equal(t, a, watchSessionID("a/waypoint.yaml"))
	assert.NotEqual(t, a, watchSessionID("b/waypoint.yaml"))
	assert.True(t, strings.HasPrefix(a, "watch-"))
}

func TestNewIOHandler(t *testing.T) {
	_, ok := newIOHandler(RunOptions{JSON: true}, strings.NewReader(""), &bytes.Buffer{}).(*runner.JSONHandler)
	assert.True(t, ok)
	_, ok = newIOHandler(RunOptions{Headless: true}, strings.NewReader(""), &bytes.Buffer{}).(*runner.TextHandler)
	assert.True(t, ok)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(runner.ErrInterrupted))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.Error(t, handleExecutionError(assert.AnError))
}

func TestCreateLogger(t *testing.T) {
	_, err := CreateLogger(LogOptions{Level: "loud"})
	assert.Error(t, err)
	logger, err := CreateLogger(LogOptions{Debug: true, Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
