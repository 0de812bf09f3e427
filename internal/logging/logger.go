package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/fitzonehq/fitzone/pkg"
)

// Setup sets up the logrus logger: log level, formatter and outputs.
// If logFileName is empty, logs go to stdout only.
func Setup(logFileName, logLevel string, logToStdout bool) {
	log.SetLevel(GetLevel(logLevel))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if logFileName == "" {
		log.SetOutput(os.Stdout)
		return
	}

	if ext := filepath.Ext(logFileName); ext != ".log" {
		logFileName += ".log"
	}

	rotatedWriter := &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    200, // megabytes
		MaxBackups: 3,
		MaxAge:     30,   // days
		Compress:   true, // disabled by default
	}

	var output io.Writer = rotatedWriter
	if logToStdout {
		output = pkg.NewCombinedWriter(rotatedWriter, os.Stdout)
	}

	log.SetOutput(output)
}

func GetLevel(logLevel string) log.Level {
	switch logLevel {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.TraceLevel
	}
}
