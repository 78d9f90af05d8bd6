package cli

import (
	"fmt"
	"strings"
)

// parseParamFlags turns repeated --param key=value flags into the
// override map the runner validates against task defaults.
func parseParamFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(flags))
	for _, f := range flags {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("bad --param %q: expected key=value", f)
		}
		params[key] = val
	}
	return params, nil
}

// splitList parses a comma-separated CLI argument into trimmed,
// non-empty items.
func splitList(arg string) []string {
	var out []string
	for _, s := range strings.Split(arg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
