package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Start in paragraph mode when an article is opened.
	ParagraphMode bool `env:"LAWFLOW_PARAGRAPH_MODE"`

	// Initial playback settings.
	Repeat bool
	Rate   float64
	Pitch  float64
	Voice  string

	// Name of the speech engine, shown in the status bar.
	EngineName string

	// For debugging the UI
	GlamourEnabled bool `env:"LAWFLOW_ENABLE_GLAMOUR" envDefault:"true"`
}
