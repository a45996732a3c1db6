//go:build windows
// +build windows

package log

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
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
		return nil, nil, fmt.Errorf("Syslog output isn't supported on Windows")
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
