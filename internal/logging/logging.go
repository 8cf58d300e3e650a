// Package logging wires the process's structured logging facade: console
// output via yaoapp/kun/log by default, optionally redirected to a
// rotating file when --log-file is set.
package logging

import (
	"github.com/yaoapp/kun/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output is the rotating log file sink, non-nil only when a log file path
// was configured. Callers should Close it on shutdown.
var Output *lumberjack.Logger

// Init sets the process log level and, if path is non-empty, mirrors log
// output to a rotating file instead of stderr.
func Init(debug bool, path string) {
	if debug {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if path == "" {
		return
	}

	Output = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}
	log.SetOutput(Output)
}

// Close releases the rotating log file, if one was configured.
func Close() {
	if Output != nil {
		if err := Output.Close(); err != nil {
			log.Error("failed to close log output: %v", err)
		}
	}
}
