package faceless

// Version is the application version reported by the API and the CLI.
var Version = "1.0.0"
