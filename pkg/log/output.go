//go:build !windows
// +build !windows

package log

import (
	"fmt"
	"io"
	"io/ioutil"
	"log/syslog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	ls "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/sirupsen/logrus/hooks/test"
)

func getOutput(logServer string, logOutput string) (io.Writer, logrus.Hook, error) {
	var output io.Writer
	var hook logrus.Hook
	var err error

	switch {
	case logOutput == outputStdout:
		output = os.Stdout
	case logOutput == outputStderr:
		output = os.Stderr
	case logOutput == outputTest:
		output = ioutil.Discard
		_, hook = test.NewNullLogger()
	case logOutput == outputSyslog:
		output = os.Stderr
		if logServer == "" {
			return nil, nil, fmt.Errorf("syslog output needs a log server (ie. 127.0.0.1:514)")
		}
		hook, err = ls.NewSyslogHook("udp", logServer, syslog.LOG_INFO, "gh-pages")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hook syslog output")
		}
	case strings.HasPrefix(logOutput, outputFilePrefix):
		output, err = fileOutput(strings.TrimPrefix(logOutput, outputFilePrefix))
		if err != nil {
			return nil, nil, err
		}
	default:
		output = os.Stderr
	}

	return output, hook, nil
}
