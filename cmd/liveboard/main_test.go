package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, storageDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli{}
	root.Stdout = &out
	root.Lookup = func(key string) (string, bool) {
		switch key {
		case "LIVEBOARD_STORAGE_DIR":
			return storageDir, true
		case "LIVEBOARD_LOG_LEVEL":
			return "error", true
		}
		return "", false
	}
	parser, err := kong.New(&root, kong.Name("liveboard"), kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = kctx.Run(&root.Globals)
	return out.String(), err
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calls.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const script = `[
  {"name": "setReportName", "args": {"name": "Ops Review"}},
  {"name": "render_metric_card", "args": {"title": "Uptime", "value": "99.9%"}},
  {"name": "render_table", "args": {"title": "Incidents"}}
]`

func TestCallPrintsToolResults(t *testing.T) {
	out, err := run(t, t.TempDir(), "call", writeScript(t, script))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `✅ Report name set to "Ops Review".`, lines[0])
	assert.Equal(t, `✅ Metric card "Uptime" has been added to the dashboard.`, lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "❌ Error:"))
}

func TestCallPinThenListAndDelete(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "call", "--pin", writeScript(t, script))
	require.NoError(t, err)
	assert.Contains(t, out, `📌 Pinned "Ops Review" as pin-`)

	out, err = run(t, dir, "pins", "list")
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.GreaterOrEqual(t, len(fields), 3)
	assert.Equal(t, "Ops Review", fields[1])
	assert.Equal(t, "1 widgets", fields[2])

	_, err = run(t, dir, "pins", "delete", fields[0])
	require.NoError(t, err)

	out, err = run(t, dir, "pins")
	require.NoError(t, err)
	assert.Equal(t, "No pinned dashboards.\n", out)

	_, err = run(t, dir, "pins", "delete", "pin-missing")
	assert.ErrorContains(t, err, "no pinned dashboard")
}

func TestCatalogExportsYAML(t *testing.T) {
	out, err := run(t, t.TempDir(), "catalog")
	require.NoError(t, err)
	var doc struct {
		Version string `yaml:"version"`
		Tools   []struct {
			Name string `yaml:"name"`
		} `yaml:"tools"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "1", doc.Version)
	assert.Len(t, doc.Tools, 7)
}

func TestCatalogOverrideFromConfig(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`version: "1"
tools:
  - name: render_table
    description: Tabular detail rows.
`), 0o600))
	configPath := filepath.Join(dir, "liveboard.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("catalog_path: "+catalogPath+"\n"), 0o600))

	out, err := run(t, dir, "--config", configPath, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Tabular detail rows.")
}

func TestPinsDiff(t *testing.T) {
	dir := t.TempDir()
	first := writeScript(t, `[{"name": "render_metric_card", "args": {"title": "Uptime", "value": "99%"}}]`)
	second := writeScript(t, `[{"name": "render_metric_card", "args": {"title": "Latency", "value": "40ms"}}]`)
	_, err := run(t, dir, "call", "--pin", first)
	require.NoError(t, err)
	_, err = run(t, dir, "call", "--pin", second)
	require.NoError(t, err)

	out, err := run(t, dir, "pins", "list")
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, rows, 2)
	fromID := strings.Split(rows[0], "\t")[0]
	toID := strings.Split(rows[1], "\t")[0]

	out, err = run(t, dir, "pins", "diff", fromID, toID)
	require.NoError(t, err)
	var removed, added []string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "-"):
			removed = append(removed, line)
		case strings.HasPrefix(line, "+"):
			added = append(added, line)
		}
	}
	assert.Contains(t, strings.Join(removed, "\n"), `"title": "Uptime"`)
	assert.Contains(t, strings.Join(added, "\n"), `"title": "Latency"`)

	out, err = run(t, dir, "pins", "diff", fromID, fromID)
	require.NoError(t, err)
	assert.Equal(t, "No differences.\n", out)
}

func TestServeAppMountsAPI(t *testing.T) {
	g := &Globals{Lookup: func(key string) (string, bool) {
		if key == "LIVEBOARD_LOG_LEVEL" {
			return "error", true
		}
		return "", false
	}}
	rt, err := g.runtime(liveboard.NewMemoryStorage())
	require.NoError(t, err)
	app := newApp(rt)

	req := httptest.NewRequest(http.MethodPost, "/api/tools/invoke",
		strings.NewReader(`{"name":"render_metric_card","args":{"title":"Uptime","value":"99%"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/board", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("ETag"))
}

func TestServeRouterServerRegistersRoutes(t *testing.T) {
	g := &Globals{Lookup: func(key string) (string, bool) {
		if key == "LIVEBOARD_LOG_LEVEL" {
			return "error", true
		}
		return "", false
	}}
	rt, err := g.runtime(liveboard.NewMemoryStorage())
	require.NoError(t, err)
	srv, err := newRouterServer(rt)
	require.NoError(t, err)
	assert.NotNil(t, srv.srv)
}

func TestServeRejectsUnknownAdapter(t *testing.T) {
	_, err := run(t, t.TempDir(), "serve", "--adapter", "gin")
	require.Error(t, err)
}
