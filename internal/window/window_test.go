package window

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjmtoolkit/cjmtoolkit/internal/testutil"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

func mainWindow(t *testing.T, doc string) settings.Cursor {
	t.Helper()
	d := settings.Decode(strings.NewReader(doc), settings.FormatXML, settings.WithLogger(testutil.NewTestLogger(t)))
	require.Equal(t, settings.StatusNoError, d.Status(), "decode: %v", d.Err())
	return d.Root().Find("CJMToolkit/MainWindow")
}

func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestFromSettings_Complete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "style"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style", "base.qss"), []byte("QWidget {}"), 0o600))

	c := mainWindow(t, `<CJMToolkit>
  <MainWindow title="CJMToolkit">
    <Size><Minimum><Width>640</Width><Height>480</Height></Minimum></Size>
    <StyleSheet>
      <file>style/base.qss</file>
      <file>style/missing.qss</file>
    </StyleSheet>
  </MainWindow>
</CJMToolkit>`)

	var logs bytes.Buffer
	cfg := FromSettings(c, captureLogger(&logs), dir)

	assert.Equal(t, "CJMToolkit", cfg.Title)
	assert.Equal(t, 640, cfg.MinimumWidth)
	assert.Equal(t, 480, cfg.MinimumHeight)
	assert.Equal(t, []StyleSheet{
		{File: "style/base.qss", Exists: true},
		{File: "style/missing.qss", Exists: false},
	}, cfg.StyleSheets)

	active, ok := cfg.ActiveStyleSheet()
	require.True(t, ok)
	assert.Equal(t, "style/base.qss", active.File)

	assert.Contains(t, logs.String(), "minimum window width set")
	assert.Contains(t, logs.String(), "non-existent stylesheet file")
}

func TestFromSettings_MissingSections(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		width   int
		height  int
		wantLog []string
	}{
		{
			name:    "no size",
			doc:     `<CJMToolkit><MainWindow/></CJMToolkit>`,
			wantLog: []string{"no size section specified", "no style-sheet section specified"},
		},
		{
			name:    "no minimum",
			doc:     `<CJMToolkit><MainWindow><Size/></MainWindow></CJMToolkit>`,
			wantLog: []string{"no minimum size section specified"},
		},
		{
			name:    "no height",
			doc:     `<CJMToolkit><MainWindow><Size><Minimum><Width>320</Width></Minimum></Size></MainWindow></CJMToolkit>`,
			width:   320,
			wantLog: []string{"no minimum height specified for the main window"},
		},
		{
			name:    "empty width",
			doc:     `<CJMToolkit><MainWindow><Size><Minimum><Width/><Height>200</Height></Minimum></Size></MainWindow></CJMToolkit>`,
			height:  200,
			wantLog: []string{"no minimum width specified for the main window"},
		},
		{
			name:    "non numeric",
			doc:     `<CJMToolkit><MainWindow><Size><Minimum><Width>12px</Width><Height>tall</Height></Minimum></Size></MainWindow></CJMToolkit>`,
			width:   12,
			wantLog: []string{"minimum width is not a number", "minimum height is not a number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			cfg := FromSettings(mainWindow(t, tt.doc), captureLogger(&logs), "")

			assert.Equal(t, tt.width, cfg.MinimumWidth)
			assert.Equal(t, tt.height, cfg.MinimumHeight)
			for _, want := range tt.wantLog {
				assert.Contains(t, logs.String(), want)
			}
		})
	}
}

func TestFromSettings_StopsAtEmptyFile(t *testing.T) {
	c := mainWindow(t, `<CJMToolkit><MainWindow><StyleSheet>
  <file>a.qss</file>
  <file/>
  <file>c.qss</file>
</StyleSheet></MainWindow></CJMToolkit>`)

	cfg := FromSettings(c, nil, t.TempDir())
	require.Len(t, cfg.StyleSheets, 1)
	assert.Equal(t, "a.qss", cfg.StyleSheets[0].File)

	_, ok := cfg.ActiveStyleSheet()
	assert.False(t, ok)
}

func TestFromSettings_InvalidCursor(t *testing.T) {
	logger, history := testutil.NewRecordingLogger(t)
	cfg := FromSettings(settings.Cursor{}, logger, "")

	assert.Equal(t, Config{}, cfg)
	entries := history.AtLeast(slog.LevelError)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Severity)
	assert.Contains(t, entries[0].Message, "invalid settings")
}

func TestLeadingInt(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"abc":   0,
		"12px":  12,
		"  -7x": -7,
		"+3":    3,
		"-":     0,
	}
	for in, want := range tests {
		assert.Equal(t, want, leadingInt(in), "leadingInt(%q)", in)
	}
}
