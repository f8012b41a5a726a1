package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is auto, light or dark. auto inspects the terminal.
	Theme string `yaml:"theme"`

	// Plain forces the line-based console view even on a terminal.
	Plain bool `yaml:"plain"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme: "auto",
		Plain: false,
	}
}

// ExportConfig controls the ranking files written at completion.
type ExportConfig struct {
	// DateFormat is a Go time layout for the completion header.
	DateFormat string `yaml:"date_format"`
}

// DefaultDateFormat renders like "Mar 1, 2024 @ 12:00".
const DefaultDateFormat = "Jan 2, 2006 @ 15:04"

// DefaultExportConfig returns the defaults.
func DefaultExportConfig() *ExportConfig {
	return &ExportConfig{DateFormat: DefaultDateFormat}
}
