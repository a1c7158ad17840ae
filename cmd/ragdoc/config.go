package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is loaded when present in the working directory.
const DefaultConfigFile = "ragdoc.yaml"

// YAMLConfig is a kong.ConfigurationLoader reading flag values from a YAML
// mapping. Keys are flag names with dashes replaced by underscores; lists
// are joined with commas. A flag whose environment variable is set is left
// to the environment.
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, env := range flag.Envs {
			if _, ok := os.LookupEnv(env); ok {
				return nil, nil
			}
		}
		v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]
		if !ok || v == nil {
			return nil, nil
		}
		return configValue(v), nil
	}), nil
}

func configValue(v any) string {
	list, ok := v.([]any)
	if !ok {
		return fmt.Sprint(v)
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, ",")
}
