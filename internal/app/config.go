package app

// Config holds runtime wiring options for building the app.
type Config struct {
	Home    string // state directory, e.g. $HOME/.olmctl
	Verbose bool   // log debug events
}
