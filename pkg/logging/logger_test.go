/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for the logging system: configuration, the custom formatter,
the log file and its retention policy.
*/

package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/sequitur/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainConfig returns a config whose console output is easy to compare
func plainConfig(console *bytes.Buffer) *logging.LoggerConfig {
	config := logging.DefaultLoggerConfig()
	config.Timestamp = false
	config.Colors = false
	config.Console = console
	return config
}

// TestLoggerConfigValidate tests configuration validation
func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, logging.DefaultLoggerConfig().Validate())

	config := logging.DefaultLoggerConfig()
	config.Format = "xml"
	assert.Error(t, config.Validate())

	config = logging.DefaultLoggerConfig()
	config.Level = "loud"
	assert.Error(t, config.Validate())

	config = logging.DefaultLoggerConfig()
	config.MaxFiles = 0
	assert.NoError(t, config.Validate(), "max_files only matters with a log directory")
	config.OutputDir = t.TempDir()
	assert.Error(t, config.Validate())

	_, err := logging.NewLogger(config)
	assert.Error(t, err)
}

// TestCustomFormatter tests the single line format
func TestCustomFormatter(t *testing.T) {
	f := &logging.CustomFormatter{}
	cases := []struct {
		message string
		level   logrus.Level
		data    logrus.Fields
		want    string
	}{
		{
			message: "Induction completed",
			level:   logrus.InfoLevel,
			data:    logrus.Fields{"tokens": 4, "run_id": "0123456789abcdef"},
			want:    "INFO [INDUCE] Induction completed run_id=01234567 tokens=4\n",
		},
		{
			message: "Rule created",
			level:   logrus.DebugLevel,
			data:    logrus.Fields{"digram": "(a b)"},
			want:    "DEBUG [RULE] Rule created digram=(a b)\n",
		},
		{
			message: "Consistency failure",
			level:   logrus.ErrorLevel,
			data:    logrus.Fields{"grammar": "#1 : a."},
			want:    "ERROR [CONSISTENCY] Consistency failure grammar=\n#1 : a.\n",
		},
		{
			message: "plain message",
			level:   logrus.WarnLevel,
			want:    "WARNING plain message\n",
		},
	}

	for _, tc := range cases {
		entry := &logrus.Entry{Message: tc.message, Level: tc.level, Data: tc.data}
		out, err := f.Format(entry)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(out))
	}
}

// TestCustomFormatterColors tests ANSI coloring
func TestCustomFormatterColors(t *testing.T) {
	f := &logging.CustomFormatter{Colors: true}
	out, err := f.Format(&logrus.Entry{Message: "Statistics of the run", Level: logrus.InfoLevel, Data: logrus.Fields{}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\033[32mINFO\033[0m")
	assert.Contains(t, string(out), "[STATS]")
}

// TestLoggerConsole tests console output and level filtering
func TestLoggerConsole(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.NewLogger(plainConfig(&console))
	require.NoError(t, err)
	defer logger.Close()
	assert.Empty(t, logger.LogPath())

	logger.GetLogger().WithField("digram", "(a b)").Debug("Rule created")
	logger.LogStats("run-1", map[string]int{"rules_created": 3, "tokens": 10}, logrus.Fields{"tokenizer": "chars"})

	out := console.String()
	assert.NotContains(t, out, "Rule created", "debug entries are filtered at info level")
	assert.Contains(t, out, "INFO [STATS] Statistics of the run rules_created=3 run_id=run-1 tokenizer=chars tokens=10 uptime=")
	assert.NotContains(t, out, "log_file", "no log file without a log directory")
}

// TestLoggerDebug tests the debug level
func TestLoggerDebug(t *testing.T) {
	var console bytes.Buffer
	config := plainConfig(&console)
	config.Level = logging.LogLevelDebug
	logger, err := logging.NewLogger(config)
	require.NoError(t, err)

	logger.GetLogger().WithFields(logrus.Fields{"rule_id": "#3", "into": "#1"}).Debug("Rule inlined")
	logger.LogConsistency(errors.New("reference count mismatch"), "#1 : a.", nil)

	out := console.String()
	assert.Contains(t, out, "DEBUG [RULE] Rule inlined into=#1 rule_id=#3")
	assert.Contains(t, out, "ERROR [CONSISTENCY] Consistency failure error=reference count mismatch grammar=\n#1 : a.")
	assert.Same(t, logger.GetLogger(), logger.GetLogger())
}

// TestLoggerJSON tests the JSON format
func TestLoggerJSON(t *testing.T) {
	var console bytes.Buffer
	config := plainConfig(&console)
	config.Format = logging.LogFormatJSON
	logger, err := logging.NewLogger(config)
	require.NoError(t, err)

	logger.LogStats("run-2", map[string]int{"tokens": 4}, nil)
	assert.Contains(t, console.String(), `"msg":"Statistics of the run"`)
	assert.Contains(t, console.String(), `"run_id":"run-2"`)
}

// TestLoggerFile tests the log file, compression and statistics
func TestLoggerFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	config := plainConfig(&console)
	config.Level = logging.LogLevelDebug
	config.OutputDir = dir
	config.Compress = true

	logger, err := logging.NewLogger(config)
	require.NoError(t, err)
	path := logger.LogPath()
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "sequitur_"))

	logger.LogStats("run-3", map[string]int{"tokens": 4}, nil)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(data))
	assert.Contains(t, string(data), "log_file=")

	require.NoError(t, logger.Close())
	assert.Equal(t, path+".gz", logger.LogPath())
	assert.NoFileExists(t, path)
	assert.FileExists(t, path+".gz")
	assert.Contains(t, console.String(), "Log files retained compressed=1")

	stats, err := logging.GetLogStats(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 1, stats.CompressedFiles)
	assert.Zero(t, stats.UncompressedFiles)
	assert.Positive(t, stats.TotalSize)
	assert.WithinDuration(t, time.Now(), stats.NewestFile, time.Minute)
}

// TestLoggerRetention tests that only the newest files are kept
func TestLoggerRetention(t *testing.T) {
	dir := t.TempDir()
	old := []string{
		"sequitur_2020-01-01_00-00-00.000.log",
		"sequitur_2020-01-02_00-00-00.000.log.gz",
		"sequitur_2020-01-03_00-00-00.000.log",
	}
	for _, name := range old {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("keep\n"), 0644))

	var console bytes.Buffer
	config := plainConfig(&console)
	config.OutputDir = dir
	config.MaxFiles = 2

	logger, err := logging.NewLogger(config)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	assert.NoFileExists(t, filepath.Join(dir, old[0]))
	assert.NoFileExists(t, filepath.Join(dir, old[1]))
	assert.FileExists(t, filepath.Join(dir, old[2]))
	assert.FileExists(t, logger.LogPath())
	assert.FileExists(t, filepath.Join(dir, "unrelated.txt"))
}
