// Package config provides configuration management for the cjmtoolkit CLI.
//
// Values are layered with koanf: built-in defaults, then cjmtoolkit.yaml,
// then CJMTOOLKIT_* environment variables, then flags the user set
// explicitly.
package config

// ServerConfig holds configuration for the HTTP settings view.
type ServerConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	SettingsFile string        `koanf:"settings_file"`
	Format       string        `koanf:"format"`
	RootNode     string        `koanf:"root_node"`
	LogFile      string        `koanf:"log_file"`
	LogLevel     string        `koanf:"log_level"`
	Verbose      bool          `koanf:"verbose"`
	NoColor      bool          `koanf:"no_color"`
	OutputFormat string        `koanf:"output"`
	Server       *ServerConfig `koanf:"server"`

	// BaseDir is the directory relative paths were resolved against.
	BaseDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultSettingsFile = "settings.cfg"
	DefaultFormat       = "xml"
	DefaultRootNode     = "CJMToolkit"
	DefaultLogLevel     = "info"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort         = 8770
)

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:  DefaultPort,
		Watch: true,
	}
}

// GetServerConfig returns the server config with defaults applied for any unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return DefaultServerConfig()
	}
	s := *c.Server
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	return &s
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		SettingsFile: DefaultSettingsFile,
		Format:       DefaultFormat,
		RootNode:     DefaultRootNode,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Server:       DefaultServerConfig(),
	}
}
