package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aigotowork/crate"
)

type Note struct {
	crate.Meta
	Text string `codec:"text"`
}

func (*Note) Kind() string { return "notes" }

func seed(t *testing.T) (string, *Note) {
	t.Helper()
	root := t.TempDir()
	s, err := crate.New(root, crate.WithLogger(crate.NewNoopLogger()))
	require.NoError(t, err)

	n := &Note{Text: "remember the bolts"}
	require.NoError(t, s.Save(n))
	return root, n
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("CRATE_LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestKindsAndList(t *testing.T) {
	root, n := seed(t)

	code, out, _ := runCLI(t, "-root", root, "kinds")
	assert.Equal(t, 0, code)
	assert.Equal(t, "notes\n", out)

	code, out, _ = runCLI(t, "-root", root, "ls", "notes")
	assert.Equal(t, 0, code)
	assert.Equal(t, n.ID+"\n", out)

	code, out, _ = runCLI(t, "-root", root, "ls", "notes", "nomatch-*")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestPath(t *testing.T) {
	root, n := seed(t)

	code, out, _ := runCLI(t, "-root", root, "path", "notes", n.ID)
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "/notes/"+n.ID+".dat"), out)
}

func TestShow(t *testing.T) {
	root, n := seed(t)

	code, out, errOut := runCLI(t, "-root", root, "show", "notes", n.ID)
	require.Equal(t, 0, code, errOut)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, n.ID, doc["id"])
	assert.Equal(t, "notes", doc["kind"])
	payload, ok := doc["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "remember the bolts", payload["text"])
}

func TestRemove(t *testing.T) {
	root, n := seed(t)

	code, _, _ := runCLI(t, "-root", root, "rm", "notes", n.ID)
	assert.Equal(t, 0, code)

	code, _, errOut := runCLI(t, "-root", root, "rm", "notes", n.ID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "record not found")
}

func TestUsageErrors(t *testing.T) {
	root := t.TempDir()

	code, _, _ := runCLI(t)
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "-root", root, "frobnicate")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "-root", root, "path", "notes")
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI(t, "-root", root+"/", "kinds")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid configuration")
}

func TestShowMissing(t *testing.T) {
	code, _, errOut := runCLI(t, "-root", t.TempDir(), "show", "notes", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "record not found")
}
