package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/cjmtoolkit/cjmtoolkit/internal/logging"
	"github.com/cjmtoolkit/cjmtoolkit/pkg/settings"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SettingsFile == "" {
		return fmt.Errorf("settings_file is required")
	}
	if c.RootNode == "" {
		return fmt.Errorf("root_node is required")
	}
	if _, err := settings.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OutputFormat != "" && !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %v)", c.OutputFormat, OutputModes)
	}
	if c.Server != nil && (c.Server.Port < 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

// ValidateSettingsFile checks that the settings file exists.
func (c *Config) ValidateSettingsFile() error {
	if _, err := os.Stat(c.SettingsFile); os.IsNotExist(err) {
		return fmt.Errorf("settings file does not exist: %s\nHint: Create the file or use --settings to specify a different path", c.SettingsFile)
	}
	return nil
}
