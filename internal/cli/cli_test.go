package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xyhelper/ringqueue/internal/config"
	"github.com/xyhelper/ringqueue/internal/logger"
	"github.com/xyhelper/ringqueue/internal/metrics"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := RootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	stdout, _, err := execute(t, "config")
	require.NoError(t, err)

	var s config.Settings
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, 2, s.Queue.Capacity)
	assert.Equal(t, 3, s.Consumers)
}

func TestConfigCommandFlagsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ringqueue.yaml")
	require.NoError(t, os.WriteFile(path, []byte("consumers: 7\nitems: 10\n"), 0o600))

	stdout, _, err := execute(t, "config", "--config", path, "--capacity", "9")
	require.NoError(t, err)

	var s config.Settings
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, 9, s.Queue.Capacity, "flag wins")
	assert.Equal(t, 7, s.Consumers, "file value")
	assert.Equal(t, 10, s.Items)
}

func TestRunCommandClassicDemo(t *testing.T) {
	stdout, stderr, err := execute(t, "run", "--items", "20000", "--log-every", "10000")
	require.NoError(t, err)

	assert.Contains(t, stdout, "produced=20000 consumed=20000")
	assert.Contains(t, stdout, "consumer 2:")
	assert.Contains(t, stderr, "msg=produced")
	assert.Contains(t, stderr, "msg=consumed")
	assert.Contains(t, stderr, "value=10000")
	assert.Contains(t, stderr, "session=")
}

func TestRunCommandRejectsInvalidCapacity(t *testing.T) {
	_, _, err := execute(t, "run", "--capacity", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
}

func TestRunSessionManyProducers(t *testing.T) {
	s, err := config.Load(config.New(), "")
	require.NoError(t, err)
	s.Producers = 3
	s.Consumers = 2
	s.Items = 1001
	s.LogEvery = 0

	var out bytes.Buffer
	require.NoError(t, runSession(context.Background(), s, &out, io.Discard))
	assert.Contains(t, out.String(), "produced=1001 consumed=1001")
}

func TestServeMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.NewQueueMetrics(registry, "session", 4)
	require.NoError(t, err)

	addr, stop, err := serveMetrics("127.0.0.1:0", registry, logger.Discard())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `ringqueue_capacity{queue="session"} 4`)

	stop()
	http.DefaultClient.CloseIdleConnections()
	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err, "server must be stopped")
}
