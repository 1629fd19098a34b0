package cli

// Options holds the command-line flags.
type Options struct {
	History  string   `short:"i" long:"history" description:"Path to the History file (Chrome / Edge)" value-name:"PATH" required:"true"`
	Output   string   `short:"o" long:"output" description:"CSV output file; rows go to stdout when omitted" value-name:"PATH"`
	JSON     bool     `long:"json" description:"Output in JSON format"`
	Types    []string `long:"type" description:"Only include this event type: BROWSING, VISIT, DOWNLOAD_START or DOWNLOAD_END (repeatable)" value-name:"TYPE"`
	Config   string   `long:"config" description:"Path to config file" default:""`
	TempDir  string   `long:"temp-dir" description:"Directory that holds the forensic copy" value-name:"DIR"`
	NoVerify bool     `long:"no-verify" description:"Do not re-hash the forensic copy"`
	Verbose  bool     `short:"v" long:"verbose" description:"Enable verbose output"`
	// Version is handled by the pre-scan in main; declared so --help lists it.
	Version  bool     `long:"version" description:"Show version and exit"`
}
