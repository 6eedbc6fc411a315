package runner

import (
	"errors"

	"github.com/itprism/itpcron/internal/constants"
)

// ErrNotCLI is returned by EnsureCLI when the process was started as a CGI
// program by a web server.
var ErrNotCLI = errors.New(constants.MsgNotCLI)

// cgiVariables are set by web servers for CGI programs (RFC 3875).
var cgiVariables = []string{"GATEWAY_INTERFACE", "REQUEST_METHOD", "SERVER_PROTOCOL"}

// EnsureCLI refuses to run when any CGI variable is present.
func EnsureCLI(getenv func(string) string) error {
	for _, name := range cgiVariables {
		if getenv(name) != "" {
			return ErrNotCLI
		}
	}
	return nil
}
