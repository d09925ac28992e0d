package app

import "fmt"

// Build metadata, stamped with -ldflags at release time:
//
//	go build -ldflags "-X github.com/mkovalev/mybooks-backend/internal/app.Version=v0.3.0 ..."
//
// Unstamped binaries report "dev", which is what local runs and tests see.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion renders the stamp for the startup log and the /health report.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
