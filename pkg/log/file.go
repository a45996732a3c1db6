package log

import (
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// FileMaxSize is the size in megabytes a log file reaches before rotation
	FileMaxSize = 10

	// FileMaxBackups is the number of rotated log files we keep
	FileMaxBackups = 3

	// FileMaxAge is the number of days rotated log files are kept
	FileMaxAge = 30
)

func fileOutput(path string) (io.Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("file output needs a path (ie. file:/var/log/gh-pages.log)")
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    FileMaxSize,
		MaxBackups: FileMaxBackups,
		MaxAge:     FileMaxAge,
	}, nil
}
