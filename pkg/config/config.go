package config

// this holds the resolved configuration values from CLI
var (
	DB              string // connection string for the database
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	LogFilter       string // zapfilter rules applied to the default logger
	SQLLogLevel     string // sets the log level for the sql subsystem
	TrackCatalog    string // path to the track catalog file (JSON)
	WaitForServices string // duration to wait for other services to be ready
)
