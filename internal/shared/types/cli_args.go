package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	APIBaseURL string
	Verbose    bool
	Page       int
	From       string
	To         string
	ReportName string
	ReportType []string
	Dir        string
}
