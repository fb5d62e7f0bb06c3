package version

// Version is the tool version embedded in reports and the version command.
// Overridable at build time: -ldflags "-X modelscan/internal/shared/version.Version=v1.2.3".
var Version = "0.4.0-dev"
