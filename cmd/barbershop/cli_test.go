package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func Test_badArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", []string{}, "expected <chairs> <customers>"},
		{"one arg", []string{"3"}, "expected <chairs> <customers>"},
		{"zero chairs", []string{"0", "5"}, "chairs must be a positive integer"},
		{"not a number", []string{"abc", "5"}, "chairs must be a positive integer"},
		{"negative customers", []string{"--", "2", "-1"}, "customers must be a non-negative integer"},
		{"negative customers read as a flag", []string{"2", "-1"}, "unknown shorthand flag"},
		{"service range", []string{"--service-min", "10ms", "--service-max", "1ms", "2", "3"}, "ServiceMax must not be less than ServiceMin"},
		{"bad config file", []string{"--config", "/nonexistent/barbershop.toml", "2", "3"}, "failed to read config file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tc.want)
			assert.Contains(t, stderr, "Usage:")
			assert.Empty(t, stdout, "nothing may run before the arguments are valid")
		})
	}
}

func Test_bindFlagsUnknownFlag(t *testing.T) {
	fs := pflag.NewFlagSet("empty", pflag.ContinueOnError)
	assert.Panics(t, func() { bindFlags(viper.New(), fs) })
}

func Test_run(t *testing.T) {
	stdout, stderr, err := execute(t,
		"--arrival-delay", "0s",
		"--service-min", "0s",
		"--service-max", "1ms",
		"--seed", "11",
		"--check-invariants",
		"2", "6",
	)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "shop opens")
	assert.Contains(t, stdout, "customer arrives")
	assert.Contains(t, stdout, "barber goes home, shop closed")
	assert.Contains(t, stdout, "chairs=2 arrivals=6")
	assert.Empty(t, stderr)
}

func Test_runJSONWithoutSummary(t *testing.T) {
	stdout, _, err := execute(t,
		"--arrival-delay", "0s", "--service-max", "0s", "--service-min", "0s",
		"--log-json", "--summary=false", "--log-level", "warn",
		"1", "3",
	)
	require.NoError(t, err)
	assert.Empty(t, stdout, "warn level hides every lifecycle line")
}

func Test_runBadLogLevel(t *testing.T) {
	_, stderr, err := execute(t, "--log-level", "loud", "1", "0")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid log level")
	assert.NotContains(t, stderr, "Usage:")
}

func Test_configCommand(t *testing.T) {
	t.Setenv("BARBERSHOP_ARRIVAL_DELAY", "3s")
	stdout, stderr, err := execute(t, "config", "--service-max", "2s", "4", "9")
	require.NoError(t, err, stderr)

	var got map[string]any
	require.NoError(t, toml.Unmarshal([]byte(stdout), &got))
	assert.EqualValues(t, 4, got["chairs"])
	assert.EqualValues(t, 9, got["customers"])
	assert.Equal(t, "2s", got["service_max"])
	assert.Equal(t, "100ms", got["service_min"])
	assert.Equal(t, "3s", got["arrival_delay"])
}

func Test_configFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.toml")
	require.NoError(t, os.WriteFile(path, []byte("chairs = 7\nservice_min = \"20ms\"\nservice_max = \"40ms\"\n"), 0o600))

	stdout, stderr, err := execute(t, "config", "--config", path)
	require.NoError(t, err, stderr)

	var got map[string]any
	require.NoError(t, toml.Unmarshal([]byte(stdout), &got))
	assert.EqualValues(t, 7, got["chairs"])
	assert.Equal(t, "20ms", got["service_min"])
	assert.Equal(t, "40ms", got["service_max"])
}
