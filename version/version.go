package version

// Version is the current version of callview
const Version = "0.3.0"

// UserAgent returns the User-Agent string for API requests
func UserAgent() string {
	return "callview/" + Version
}
