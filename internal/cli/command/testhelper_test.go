package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// testCLI runs the app against one data directory with an instant
// simulated bridge.
type testCLI struct {
	t   *testing.T
	dir string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{t: t, dir: t.TempDir()}
}

// run executes one invocation and returns its stdout.
func (tc *testCLI) run(args ...string) (string, error) {
	return tc.runWithInput("", args...)
}

func (tc *testCLI) runWithInput(input string, args ...string) (string, error) {
	tc.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(input)

	full := append([]string{
		"gamesvc",
		"--data-dir", tc.dir,
		"--set", "bridge.latency=0s",
	}, args...)
	err := app.RunContext(ctx, full)
	if err != nil {
		tc.t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

// mustRun fails the test when the invocation errors.
func (tc *testCLI) mustRun(args ...string) string {
	tc.t.Helper()
	out, err := tc.run(args...)
	if err != nil {
		tc.t.Fatalf("%v: %v", args, err)
	}
	return out
}
