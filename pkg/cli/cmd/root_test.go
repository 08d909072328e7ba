package cmd_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/cli/cmd"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp/vvptest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRootTest = errors.New("boom")

const ordersYAML = `apiVersion: v1
kind: Deployment
metadata:
  name: orders
spec:
  state: RUNNING
  template:
    spec:
      parallelism: 2
      artifact:
        kind: JAR
        jarUri: s3://jobs/orders.jar
`

// harness runs vvpctl against an in-memory platform.
type harness struct {
	server *vvptest.Server
	dir    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	server := vvptest.NewServer(t)
	dir := t.TempDir()
	config := filepath.Join(dir, "vvpctl.yaml")

	content := fmt.Sprintf(`server: %s
namespace: analytics
stateDir: %s
waitTimeout: 5s
logLevel: error
retry:
  maxAttempts: 2
  baseWait: 1ms
  maxWait: 5ms
`, server.URL, filepath.Join(dir, "state"))

	require.NoError(t, os.WriteFile(config, []byte(content), 0o600))

	return &harness{server: server, dir: dir, config: config}
}

// document writes content to a file in the harness directory.
func (h *harness) document(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (h *harness) run(args ...string) (string, string, error) {
	return h.runWithInput("", args...)
}

func (h *harness) runWithInput(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer

	root := cmd.NewRootCmd("test", "abc", "today")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", h.config}, args...))

	err := root.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func replaceOnce(content, old, replacement string) string {
	return strings.Replace(content, old, replacement, 1)
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[len(values)-1]
}

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")

	assert.Equal(t, "1.2.3 (Built on 2025-08-17 from Git SHA abc123)", root.Version)
}

func TestExecuteShowsHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetArgs([]string{})

	require.NoError(t, root.Execute())

	for _, sub := range []string{"apply", "diff", "get", "list", "delete", "schema", "version"} {
		assert.Contains(t, out.String(), sub)
	}
}

func TestPersistentFlagsRegistered(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	for _, name := range []string{"config", "server", "namespace", "token", cmd.NoColorFlagName} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "vvpctl 1.2.3\ncommit: abc123\nbuilt:  2025-08-17\n", out.String())
}

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetArgs([]string{"schema"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"metadata"`)
	assert.Contains(t, out.String(), `"Deployment"`)
}

func TestExecuteWithNonexistentCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"nonexistent"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, out.String(), `unknown command "nonexistent"`)
}

func TestExecuteWrapperSuccess(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{Use: "ok", RunE: func(*cobra.Command, []string) error { return nil }})
	root.SetArgs([]string{"ok"})

	require.NoError(t, cmd.Execute(root))
}

func TestExecuteWrapperError(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{Use: "fail", RunE: func(*cobra.Command, []string) error { return errRootTest }})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"fail"})

	err := cmd.Execute(root)

	require.ErrorIs(t, err, errRootTest)
	assert.Contains(t, err.Error(), "command execution failed")
}

func TestInvalidConfigFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, _, err := h.run("list", "--server", "not a url")

	require.Error(t, err)
	assert.Equal(t, cmd.ExitFailure, cmd.ExitCode(err))
}
