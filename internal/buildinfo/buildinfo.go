package buildinfo

// Name is the program name shown in window titles and the startup log line.
const Name = "mandelzoom"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns the full build identifier, e.g. "mandelzoom dev (commit unknown, built unknown)".
func String() string {
	return Name + " " + Short() + " (commit " + Commit + ", built " + Date + ")"
}
