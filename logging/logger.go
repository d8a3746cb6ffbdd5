package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log defaults to a plain logrus logger until BootstrapLogger runs.
var Log = logrus.New()

// BootstrapLogger builds the process logger. JSON output is used when running
// inside Lambda so CloudWatch can index the fields.
func BootstrapLogger(level string, json bool) {
	Log = logrus.New()

	if json {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}
	Log.SetLevel(lvl)
	Log.SetReportCaller(true)
	Log.Out = os.Stdout
}
