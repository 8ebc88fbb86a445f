package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typediagram/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded config") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache hit") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache hit") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressOnlyWhenVerbose(t *testing.T) {
	var quiet bytes.Buffer
	newProgress(newLogger(&quiet, log.InfoLevel), "layout").done("kind", "ast")
	if quiet.Len() != 0 {
		t.Errorf("progress logged at info level: %q", quiet.String())
	}

	var verbose bytes.Buffer
	newProgress(newLogger(&verbose, log.DebugLevel), "typing").done("expression", "λx.x", "cached", true)
	out := verbose.String()
	for _, want := range []string{"typing", "took=", "expression=λx.x", "cached=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q does not contain %q", out, want)
		}
	}
}

func TestVerboseFlagLogsStages(t *testing.T) {
	t.Setenv(envConfig, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	doc := writeASTDocument(t, t.TempDir())

	t.Cleanup(observability.Reset)

	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs([]string{"layout", doc, "--no-cache", "-v"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout -v: %v", err)
	}
	if out := logs.String(); !strings.Contains(out, "layout") || !strings.Contains(out, "kind=ast") {
		t.Errorf("verbose log does not report the layout stage:\n%s", out)
	}
}
