package version

// Set at build time via -ldflags where packaging needs it; defaults cover
// plain `go build`.
var (
	AppName    = "VBot"
	AppVersion = "2.0.0"
	GoVersion  = ""
	BuildDate  = ""
)
