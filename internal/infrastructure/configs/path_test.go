package configs

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withArgs swaps the process args and the global flag set so each test
// parses its own command line.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	oldFlags := flag.CommandLine
	t.Cleanup(func() {
		os.Args = oldArgs
		flag.CommandLine = oldFlags
	})
	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	os.Args = args
}

func writeConfig(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 8080\n"), 0o600))
	return path
}

func TestDetermineConfigPath_FlagBeatsWorkingDirCandidate(t *testing.T) {
	req := require.New(t)

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, "config.yaml"))
	t.Chdir(dir)

	custom := writeConfig(t, filepath.Join(t.TempDir(), "custom.yaml"))
	withArgs(t, "realtime", "--config", custom)

	req.Equal(custom, DetermineConfigPath())
}

func TestDetermineConfigPath_EnvFallback(t *testing.T) {
	req := require.New(t)

	t.Chdir(t.TempDir())
	withArgs(t, "realtime")

	custom := writeConfig(t, filepath.Join(t.TempDir(), "env.yaml"))
	t.Setenv("QUEUELINE_CONFIG", custom)

	req.Equal(custom, DetermineConfigPath())
}

func TestDetermineConfigPath_WorkingDirCandidate(t *testing.T) {
	req := require.New(t)

	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, "config.yaml"))
	t.Chdir(dir)
	withArgs(t, "realtime")

	req.Equal("./config.yaml", DetermineConfigPath())
}
