package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/calvinmclean/motorloop/control"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Motors, 2)

	m1, m2 := cfg.Motors[0], cfg.Motors[1]
	assert.Equal(t, "M1", m1.Label)
	assert.Equal(t, "Task_1", m1.Name())
	assert.Equal(t, 10*time.Millisecond, m1.Period())
	assert.Equal(t, "M2", m2.Label)
	assert.Equal(t, "Task_2", m2.Name())
	assert.Equal(t, 35*time.Millisecond, m2.Period())
	assert.Equal(t, m1.Priority, m2.Priority)

	for _, m := range cfg.Motors {
		assert.Equal(t, 2000*time.Millisecond, m.Window())
		assert.InDelta(t, 0.35, m.Kp, 1e-9)

		cc, err := m.Control()
		require.NoError(t, err)
		assert.Equal(t, int64(8192), cc.TicksPerRev)
		assert.Equal(t, control.SetpointRevolution, cc.Setpoint)
		assert.Equal(t, -100.0, cc.Min)
		assert.Equal(t, 100.0, cc.Max)
		assert.Equal(t, 100.0, m.Motor().MaxDuty)
	}

	assert.True(t, cfg.Console.Enabled)
	assert.Equal(t, 50*time.Millisecond, cfg.Console.Period())
	assert.Less(t, cfg.Console.Priority, m1.Priority)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		checkFn func(*testing.T, Config, error)
	}{
		{
			"EmptyUsesDefaults",
			"",
			func(t *testing.T, cfg Config, err error) {
				require.NoError(t, err)
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			"ConsoleOnly",
			"console:\n  enabled: false\n",
			func(t *testing.T, cfg Config, err error) {
				require.NoError(t, err)
				assert.False(t, cfg.Console.Enabled)
				assert.Len(t, cfg.Motors, 2)
			},
		},
		{
			"MotorsOverlayDefaults",
			`
motors:
  - label: M1
    period_ms: 20
    kp: 0.5
  - label: M3
    priority: 3
    window_ms: 1000
    setpoint: zero
`,
			func(t *testing.T, cfg Config, err error) {
				require.NoError(t, err)
				require.Len(t, cfg.Motors, 2)

				m1 := cfg.Motors[0]
				assert.Equal(t, 20*time.Millisecond, m1.Period())
				assert.InDelta(t, 0.5, m1.Kp, 1e-9)
				assert.Equal(t, int64(8192), m1.TicksPerRev)
				assert.Equal(t, 1, m1.Priority)
				assert.Equal(t, "Task_M1", m1.Name())
				assert.True(t, m1.Profile)

				m3 := cfg.Motors[1]
				assert.Equal(t, 3, m3.Priority)
				assert.Equal(t, time.Second, m3.Window())
				assert.Equal(t, 10*time.Millisecond, m3.Period())
				cc, err := m3.Control()
				require.NoError(t, err)
				assert.Equal(t, control.SetpointZero, cc.Setpoint)
			},
		},
		{
			"InvalidValues",
			`
motors:
  - label: M1
    period_ms: -1
    setpoint: sideways
`,
			func(t *testing.T, _ Config, err error) {
				require.Error(t, err)
				assert.Len(t, multierr.Errors(err), 2)
				assert.Contains(t, err.Error(), "period_ms must be positive")
				assert.Contains(t, err.Error(), "invalid setpoint mode")
			},
		},
		{
			"BadYAML",
			"motors: [",
			func(t *testing.T, _ Config, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "error parsing config")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			}

			cfg, err := Load(path)
			tt.checkFn(t, cfg, err)
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errs   []string
	}{
		{
			"NoMotors",
			func(c *Config) { c.Motors = nil },
			[]string{"at least one motor is required"},
		},
		{
			"DuplicateLabel",
			func(c *Config) { c.Motors[1].Label = "M1" },
			[]string{`duplicate label "M1"`},
		},
		{
			"DuplicateTaskName",
			func(c *Config) { c.Motors[1].TaskName = "Task_1" },
			[]string{`duplicate task name "Task_1"`},
		},
		{
			"BadLabel",
			func(c *Config) { c.Motors[0].Label = "M 1" },
			[]string{"label cannot contain commas or whitespace"},
		},
		{
			"SentinelLabel",
			func(c *Config) { c.Motors[0].Label = "EndX" },
			[]string{"label cannot start with End"},
		},
		{
			"DutyLimits",
			func(c *Config) {
				c.Motors[0].MinDuty = 150
				c.Motors[0].MaxDuty = 150
			},
			[]string{"must be within", "less than max_duty"},
		},
		{
			"EncoderBits",
			func(c *Config) { c.Motors[0].EncoderBits = 33 },
			[]string{"encoder_bits must be between 1 and 32"},
		},
		{
			"Console",
			func(c *Config) { c.Console.PeriodMS = 0 },
			[]string{"console: period_ms must be positive"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Len(t, multierr.Errors(err), len(tt.errs))
			for _, msg := range tt.errs {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}
