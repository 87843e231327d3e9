package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/riskibarqy/match-analysis/internal/config"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "match-analysis-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitUptrace_EnabledWithoutDSNStaysOff(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONWriter(&buf, logging.LevelInfo, "")

	shutdown, err := InitUptrace(config.Config{UptraceEnabled: true}, logger)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "UPTRACE_DSN empty")
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, nil)
	require.NoError(t, err)
	assert.NoError(t, stop())
}

func TestPyroscopeLogger_ForwardsErrors(t *testing.T) {
	var buf bytes.Buffer
	l := pyroscopeLogger{logger: logging.NewJSONWriter(&buf, logging.LevelInfo, "")}

	l.Debugf("dropped %d", 1)
	assert.Zero(t, buf.Len())

	l.Errorf("upload failed: %s", "timeout")
	assert.Contains(t, buf.String(), "upload failed: timeout")
}
