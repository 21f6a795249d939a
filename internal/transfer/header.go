package transfer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedHeader = errors.New("header must be in the format of [header_name]:[header_value]")

// ParseHeaders turns repeated "name:value" arguments into a header map. The
// value is everything after the first colon, trimmed.
func ParseHeaders(args []string) (map[string]string, error) {
	headers := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, arg)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
