package buildversion

import "fmt"

// Set at link time via -ldflags.
var (
	version   = "dev"
	gitSHA    = "unknown"
	buildTime = "unknown"
)

func Version() string {
	return version
}

func GitSHA() string {
	return gitSHA
}

func BuildTime() string {
	return buildTime
}

func Full() string {
	return fmt.Sprintf("%s (%s) built %s", version, gitSHA, buildTime)
}
