package version

// Version is stamped by the release workflow; "dev" for local builds.
var Version = "dev"
