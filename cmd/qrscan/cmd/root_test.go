package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ericlevine/qrscan/internal/qrtest"
	"github.com/ericlevine/qrscan/internal/scan"
)

// isolate keeps stray qrscan.yaml files and QRSCAN_* variables out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return dir
}

func writeSymbol(t *testing.T, dir, name, content string) string {
	t.Helper()
	symbol, _ := qrtest.Symbol(t, content, qrtest.LevelQ)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, qrtest.Image(qrtest.Render(symbol, 4, 4))))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDecodeText(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "first")

	stdout, _, err := run(t, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", stdout)
}

func TestDecodeTextMultiple(t *testing.T) {
	dir := isolate(t)
	a := writeSymbol(t, dir, "a.png", "first")
	b := writeSymbol(t, dir, "b.png", "second")

	stdout, _, err := run(t, "decode", a, b)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s: first\n%s: second\n", a, b), stdout)
}

func TestDecodeJSON(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "as json")

	stdout, _, err := run(t, "decode", "--format", "json", "--binarizer", "histogram", path)
	require.NoError(t, err)
	var reports []scan.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "as json", reports[0].Text)
	assert.Equal(t, "Q", reports[0].ECLevel)
	assert.Equal(t, path, reports[0].Source)
}

func TestDecodeYAML(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "as yaml")

	stdout, _, err := run(t, "decode", "-f", "yaml", path)
	require.NoError(t, err)
	var reports []scan.Report
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "as yaml", reports[0].Text)
	assert.Equal(t, 1, reports[0].Version)
}

func TestDecodeFormatFromConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "configured")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qrscan.yaml"), []byte("output:\n  format: json\n"), 0o600))

	stdout, _, err := run(t, "decode", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "["), stdout)

	stdout, _, err = run(t, "decode", "--format", "text", path)
	require.NoError(t, err)
	assert.Equal(t, "configured\n", stdout)
}

func TestDecodeFailures(t *testing.T) {
	dir := isolate(t)
	good := writeSymbol(t, dir, "good.png", "ok")
	missing := filepath.Join(dir, "missing.png")

	stdout, stderr, err := run(t, "decode", good, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, stdout, "ok")
	assert.Contains(t, stderr, missing)
}

func TestDecodeRejectsInvalidConfig(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "x")

	_, _, err := run(t, "decode", "--binarizer", "otsu", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid binarizer")

	_, _, err = run(t, "decode", "--format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestDecodeRequiresArgs(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "decode")
	require.Error(t, err)
}

func TestVerboseLogging(t *testing.T) {
	dir := isolate(t)
	path := writeSymbol(t, dir, "a.png", "logged")

	_, stderr, err := run(t, "decode", "-v", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
	assert.Contains(t, stderr, "decoded QR code")

	_, stderr, err = run(t, "decode", "--log-level", "error", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	isolate(t)
	port := freePort(t)

	root := NewRootCommand()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"serve", "--host", "127.0.0.1", "--port", fmt.Sprint(port)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, stdout.String(), "starting server")
	assert.Contains(t, stdout.String(), "shutdown complete")
}

func TestServeRejectsInvalidPort(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
