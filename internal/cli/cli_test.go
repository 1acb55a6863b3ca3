package cli

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/hfsm"
)

const treeFile = "testdata/tree.yaml"

// run executes the root command with args and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInspect_Text(t *testing.T) {
	out, _, err := run(t, "inspect", treeFile)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "inspect", []byte(out))
}

func TestInspect_JSON(t *testing.T) {
	out, _, err := run(t, "--format", "json", "inspect", treeFile)
	require.NoError(t, err)

	var res InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "reference", res.Name)
	require.Len(t, res.States, 13)
	assert.Equal(t, StateInfo{ID: 6, Tag: "B", Kind: "orthogonal", Parent: 0, Depth: 1}, res.States[6])
	assert.Equal(t, -1, res.States[0].Parent)
	assert.Equal(t, 10, res.Counters.ProngCount)
}

func TestInspect_MissingFile(t *testing.T) {
	_, _, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := run(t, "--format", "xml", "inspect", treeFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestDot(t *testing.T) {
	out, _, err := run(t, "dot", "--rankdir", "LR", treeFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"), out)
	assert.Contains(t, out, "rankdir=LR")
	assert.Contains(t, out, "B_2_2")

	path := filepath.Join(t.TempDir(), "tree.dot")
	_, _, err = run(t, "dot", "-o", path, treeFile)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A_2_1")
}

func TestDot_SVG(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz dot binary not installed")
	}

	out, _, err := run(t, "dot", "--svg", treeFile)
	require.NoError(t, err)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "B_2_2")

	path := filepath.Join(t.TempDir(), "tree.svg")
	_, _, err = run(t, "dot", "--svg", "-o", path, treeFile)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "</svg>")
}

func TestSimulate_Text(t *testing.T) {
	out, stderr, err := run(t, "simulate", treeFile, "-n", "2", "--script", "A_1=restart:A_2")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	assert.Equal(t, strings.Join([]string{
		"tick 0: <root> A A_1",
		"tick 1: <root> A A_2 A_2_1",
		"tick 2: <root> A A_2 A_2_1",
	}, "\n")+"\n", out)
}

func TestSimulate_ResumeParallel(t *testing.T) {
	out, _, err := run(t, "simulate", treeFile, "-n", "1",
		"-s", "A_1=schedule:B_1_2",
		"-s", "A_1=resume:B",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "tick 1: <root> B B_1 B_1_2 B_2 B_2_1", lines[1])
}

func TestSimulate_JSON(t *testing.T) {
	out, _, err := run(t, "--format", "json", "simulate", treeFile, "-n", "1", "-s", "A_1=restart:B")
	require.NoError(t, err)

	var snapshots []hfsm.Snapshot
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		s, err := hfsm.ParseSnapshot(scanner.Bytes())
		require.NoError(t, err)
		snapshots = append(snapshots, s)
	}
	require.Len(t, snapshots, 2)
	assert.Equal(t, "simulate", snapshots[0].Name)
	assert.Equal(t, uint64(1), snapshots[1].Ticks)
	assert.Equal(t, []string{hfsm.RootTag, "B", "B_1", "B_1_1", "B_2", "B_2_1"}, snapshots[1].Active)
}

func TestSimulate_UnknownTarget(t *testing.T) {
	out, stderr, err := run(t, "simulate", treeFile, "-s", "A_1=restart:Nowhere")
	require.NoError(t, err)
	assert.Contains(t, stderr, "tick 1:")
	assert.Contains(t, stderr, "Nowhere")
	assert.Contains(t, out, "tick 1: <root> A A_1")
}

func TestSimulate_BadScript(t *testing.T) {
	tests := []string{"A_1", "A_1=restart", "A_1=jump:A_2", "=restart:A_2"}
	for _, entry := range tests {
		t.Run(entry, func(t *testing.T) {
			_, _, err := run(t, "simulate", treeFile, "-s", entry)
			assert.Error(t, err)
		})
	}
}

func TestSimulate_UnknownScriptedState(t *testing.T) {
	_, _, err := run(t, "simulate", treeFile, "-s", "Z=restart:A_2")
	require.Error(t, err)
	assert.True(t, hfsm.IsStateError(err))
}
