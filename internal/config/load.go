package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/hiertask/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// MethodPrefix is the prefix every runnable algorithm method carries.
const MethodPrefix = "clixo"

// Load parses and decodes the task file at path. The file is either HCL or
// the line-oriented key/value form accepted by parseKeyValue. environ is a list of
// KEY=value pairs, as returned by os.Environ, exposed to expressions as `env`.
func Load(ctx context.Context, path string, environ []string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding task file.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var f *File
	if isKeyValue(src) {
		logger.Debug("Task file is in key/value form.", "path", path)
		f, err = parseKeyValue(path, src)
	} else {
		f, err = decodeHCL(path, src, environ)
	}
	if err != nil {
		return nil, err
	}

	if f.Algorithm != nil && !strings.HasPrefix(f.Algorithm.Method, MethodPrefix) {
		return nil, fmt.Errorf("task file %s: unsupported algorithm method %q", path, f.Algorithm.Method)
	}

	logger.Debug("Successfully decoded task file.", "path", path, "has_algorithm", f.Algorithm != nil, "has_ndex", f.NDEx != nil)
	return f, nil
}

func decodeHCL(path string, src []byte, environ []string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, diags)
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(environ), &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode task file %s: %w", path, diags)
	}
	return &f, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}
