package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	DBPath   string
	Language string
	LogLevel string

	// search
	Save bool

	// image
	Output string
	Width  int
	Height int

	// export
	ExportFile string
	MediaDir   string
}

// NewFlags creates a new Flags instance with default values.
// Zero values defer to the configuration.
func NewFlags() *Flags {
	return &Flags{}
}
