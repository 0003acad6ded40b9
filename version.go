package waypoint

// Version is reported by the CLI and the server adapters.
var Version = "v0.3.0"
