package bootstrap

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtol-medical-drone-system/internal/logging"
)

func TestCheckAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "style.css"), 0o755))

	err := CheckAssets(dir, []string{"index.html", "app.js", "style.css"})
	var missing *MissingAssetsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"app.js", "style.css"}, missing.Missing)
	assert.Contains(t, err.Error(), "app.js, style.css")

	assert.NoError(t, CheckAssets(dir, []string{"index.html"}))
}

func occupy(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

func TestListen_FreePort(t *testing.T) {
	port := occupy(t)

	ln, got, err := Listen(context.Background(), "127.0.0.1", port, 10, logging.Nop())
	require.NoError(t, err)
	defer ln.Close()

	assert.Greater(t, got, port)
	assert.LessOrEqual(t, got, port+9)
	assert.Equal(t, got, ln.Addr().(*net.TCPAddr).Port)
}

func TestListen_Exhausted(t *testing.T) {
	port := occupy(t)

	_, _, err := Listen(context.Background(), "127.0.0.1", port, 1, logging.Nop())
	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, port, bindErr.FirstPort)
	assert.Equal(t, 1, bindErr.Attempts)
}

func TestListen_OtherErrorsAreNotRetried(t *testing.T) {
	_, _, err := Listen(context.Background(), "192.0.2.1", 8000, 5, logging.Nop())
	require.Error(t, err)
	var bindErr *BindError
	assert.False(t, errors.As(err, &bindErr))
}

func TestListen_StopsAtLastPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:65535")
	if err != nil {
		t.Skipf("port 65535 unavailable: %v", err)
	}
	defer ln.Close()

	_, _, err = Listen(context.Background(), "127.0.0.1", 65535, 10, logging.Nop())
	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, 1, bindErr.Attempts)
	assert.Contains(t, err.Error(), "65535-65535 after 1 attempts")

	_, _, err = Listen(context.Background(), "127.0.0.1", 65536, 10, logging.Nop())
	assert.ErrorContains(t, err, "out of range")
}

func TestBrowserCommand(t *testing.T) {
	name, args, err := browserCommand("linux", "http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"http://localhost:8000"}, args)

	name, _, err = browserCommand("darwin", "http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "open", name)

	_, _, err = browserCommand("plan9", "http://localhost:8000")
	assert.Error(t, err)
}
