package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// isKeyValue reports whether src is a plain "key value" listing rather than
// HCL. Any HCL body with content needs '=' or '{'.
func isKeyValue(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.ContainsAny(line, "={") {
			return false
		}
	}
	return true
}

// parseKeyValue decodes the line-oriented format, one whitespace-separated
// key and value per line:
//
//	Method	clixo1.0b
//	alpha	0.05
//	beta	0.5
//
// Method is required; alpha, beta and clixopath are optional.
func parseKeyValue(path string, src []byte) (*File, error) {
	alg := &Algorithm{}
	hasMethod := false

	for i, line := range bytes.Split(src, []byte("\n")) {
		text := strings.TrimSpace(string(line))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("task file %s line %d: expected a key and a value, got %d fields", path, i+1, len(fields))
		}
		key, value := fields[0], fields[1]

		switch key {
		case "Method":
			alg.Method = value
			hasMethod = true
		case "alpha", "beta":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("task file %s line %d: %s: %w", path, i+1, key, err)
			}
			if key == "alpha" {
				alg.Alpha = &v
			} else {
				alg.Beta = &v
			}
		case "clixopath":
			alg.Path = &value
		default:
			return nil, fmt.Errorf("task file %s line %d: unknown key %q", path, i+1, key)
		}
	}

	if !hasMethod {
		return nil, fmt.Errorf("task file %s: Method not specified, add a line such as: Method\tclixo1.0b", path)
	}
	return &File{Algorithm: alg}, nil
}
