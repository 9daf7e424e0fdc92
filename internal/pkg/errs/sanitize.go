package errs

import (
	"fmt"
	"strings"
)

// sanitize flattens line breaks in user-supplied values so error messages
// stay on a single log line.
func sanitize(value any) string {
	s := fmt.Sprintf("%v", value)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
