package runner

import (
	"fmt"
	"strings"

	"github.com/wasilibs/go-re2"
	"golang.org/x/text/unicode/norm"

	"github.com/itprism/itpcron/internal/constants"
)

// disallowed matches everything a context suffix may not contain.
var disallowed = re2.MustCompile(`[^A-Za-z0-9_.\-]`)

// SanitizeContext reduces a user supplied context to [A-Za-z0-9._-] after
// NFKC normalisation and trims leading dots.
func SanitizeContext(s string) string {
	s = norm.NFKC.String(s)
	s = disallowed.ReplaceAllString(s, "")
	return strings.TrimLeft(s, ".")
}

// QualifiedContext builds "<namespace>.cron.<mode>.<context>".
func QualifiedContext(namespace string, mode Mode, context string) string {
	return fmt.Sprintf(constants.QualifiedContextFormat, namespace, mode, context)
}
