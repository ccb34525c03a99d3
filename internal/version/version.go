package version

// Build information, overridden via -ldflags at release time
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// UserAgent returns the User-Agent header value sent with every request
func UserAgent() string {
	return "GME-CLI/" + Version
}
