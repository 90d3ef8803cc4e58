// Package window derives the main window configuration from a settings
// tree.
//
// The settings look like
//
//	<MainWindow title="CJMToolkit">
//	  <Size>
//	    <Minimum><Width>640</Width><Height>480</Height></Minimum>
//	  </Size>
//	  <StyleSheet>
//	    <file>style/base.qss</file>
//	    <file>style/dark.qss</file>
//	  </StyleSheet>
//	</MainWindow>
//
// Every missing piece is reported and replaced by a zero value; nothing
// here fails.
package window

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// Settings node names.
const (
	NodeName       = "MainWindow"
	SizeNode       = "Size"
	MinimumNode    = "Minimum"
	WidthNode      = "Width"
	HeightNode     = "Height"
	StyleSheetNode = "StyleSheet"
	FileNode       = "file"
	TitleAttribute = "title"
)

// StyleSheet is one style sheet entry.
type StyleSheet struct {
	File   string `json:"file" yaml:"file"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// Config is the main window configuration.
type Config struct {
	Title         string       `json:"title,omitempty" yaml:"title,omitempty"`
	MinimumWidth  int          `json:"minimum_width" yaml:"minimum_width"`
	MinimumHeight int          `json:"minimum_height" yaml:"minimum_height"`
	StyleSheets   []StyleSheet `json:"style_sheets" yaml:"style_sheets"`
}

// ActiveStyleSheet returns the style sheet that ends up applied: each
// existing file replaces the one before it.
func (c Config) ActiveStyleSheet() (StyleSheet, bool) {
	for i := len(c.StyleSheets) - 1; i >= 0; i-- {
		if c.StyleSheets[i].Exists {
			return c.StyleSheets[i], true
		}
	}
	return StyleSheet{}, false
}

// FromSettings reads the window configuration below c, which should be the
// MainWindow node. Relative style sheet paths are checked against baseDir.
func FromSettings(c settings.Cursor, logger *slog.Logger, baseDir string) Config {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var cfg Config
	if !c.Valid() {
		logger.Error("invalid settings")
		return cfg
	}

	cfg.Title = c.Attribute(TitleAttribute)
	cfg.MinimumWidth, cfg.MinimumHeight = loadSizes(c, logger)
	cfg.StyleSheets = loadStyleSheets(c, logger, baseDir)
	return cfg
}

func loadSizes(c settings.Cursor, logger *slog.Logger) (width, height int) {
	size := c.Child(SizeNode)
	if !size.Valid() {
		logger.Warn("no size section specified", "node", SizeNode)
		return 0, 0
	}
	minimum := size.Child(MinimumNode)
	if !minimum.Valid() {
		logger.Warn("no minimum size section specified", "node", SizeNode+"/"+MinimumNode)
		return 0, 0
	}

	width = loadDimension(minimum, WidthNode, logger)
	height = loadDimension(minimum, HeightNode, logger)
	return width, height
}

func loadDimension(minimum settings.Cursor, name string, logger *slog.Logger) int {
	dim := strings.ToLower(name)
	node := minimum.Child(name)
	if !node.Valid() || node.Value() == settings.DefaultValue {
		logger.Warn("no minimum "+dim+" specified for the main window",
			"node", SizeNode+"/"+MinimumNode+"/"+name)
		return 0
	}

	value := node.Value()
	n, err := strconv.Atoi(value)
	if err != nil {
		n = leadingInt(value)
		logger.Warn("minimum "+dim+" is not a number", "value", value, "using", n)
	}
	logger.Info("minimum window "+dim+" set", dim, n)
	return n
}

func loadStyleSheets(c settings.Cursor, logger *slog.Logger, baseDir string) []StyleSheet {
	section := c.Child(StyleSheetNode)
	if !section.Valid() {
		logger.Warn("no style-sheet section specified", "node", StyleSheetNode)
		return nil
	}

	sheets := make([]StyleSheet, 0, section.Count(FileNode))
	for i := 0; i < section.Count(FileNode); i++ {
		file := section.EnterNode(FileNode, i).Value()
		if file == settings.DefaultValue {
			break
		}
		path := file
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		_, err := os.Stat(path)
		sheet := StyleSheet{File: file, Exists: err == nil}
		if sheet.Exists {
			logger.Info("style-sheet set", "file", file)
		} else {
			logger.Warn("non-existent stylesheet file", "file", file)
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

// leadingInt parses the optionally signed run of digits at the start of s,
// ignoring leading spaces, and returns 0 if there is none.
func leadingInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	n, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0
	}
	return n
}
