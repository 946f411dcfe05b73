package globflags

var (
	ConfigPath string
	Verbose    bool
)
