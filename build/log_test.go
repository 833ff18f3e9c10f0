package build

import (
	"bytes"
	"testing"

	btclogv1 "github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, subsystems ...string) *SubLoggerManager {
	t.Helper()

	var buf bytes.Buffer
	mgr := NewSubLoggerManager(&buf)
	for _, s := range subsystems {
		mgr.RegisterSubLogger(s, mgr.GenSubLogger(s))
	}

	return mgr
}

// TestParseAndSetDebugLevels checks the global and per subsystem syntax.
func TestParseAndSetDebugLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		wantErr bool
		want    map[string]btclogv1.Level
	}{
		{
			name:  "global",
			level: "debug",
			want: map[string]btclogv1.Level{
				"KPAC": btclogv1.LevelDebug,
				"SBOX": btclogv1.LevelDebug,
			},
		},
		{
			name:  "global and subsystem",
			level: "warn,SBOX=trace",
			want: map[string]btclogv1.Level{
				"KPAC": btclogv1.LevelWarn,
				"SBOX": btclogv1.LevelTrace,
			},
		},
		{
			name:    "unknown subsystem",
			level:   "FOO=debug",
			wantErr: true,
		},
		{
			name:  "off for one subsystem",
			level: "SBOX=off",
			want: map[string]btclogv1.Level{
				"SBOX": btclogv1.LevelOff,
			},
		},
		{
			name:    "empty",
			level:   "",
			wantErr: true,
		},
		{
			name:    "bad level",
			level:   "loud",
			wantErr: true,
		},
		{
			name:    "bad pair",
			level:   "info,SBOX",
			wantErr: true,
		},
		{
			name:    "too many fields",
			level:   "SBOX=debug=trace",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mgr := newTestManager(t, "KPAC", "SBOX")

			err := ParseAndSetDebugLevels(test.level, mgr)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			loggers := mgr.SubLoggers()
			for subsystem, level := range test.want {
				require.Equal(
					t, level, loggers[subsystem].Level(),
					subsystem,
				)
			}
		})
	}
}

// TestSupportedSubsystems checks the sorted subsystem listing.
func TestSupportedSubsystems(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, "SBOX", "AESM", "KPAC")
	require.Equal(
		t, []string{"AESM", "KPAC", "SBOX"}, mgr.SupportedSubsystems(),
	)
}

// TestLogConfigValidate checks compressor and call-site validation.
func TestLogConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultLogConfig()
	require.NoError(t, cfg.Validate())

	cfg.File.Compressor = "lz4"
	require.Error(t, cfg.Validate())

	cfg = DefaultLogConfig()
	cfg.Console.CallSite = "everywhere"
	require.Error(t, cfg.Validate())
}
