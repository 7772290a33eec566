package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "VERSIONIST_"

// ConfigFileNames are tried in order, relative to the repository root.
var ConfigFileNames = []string{
	".github/versionist.yml",
	".versionist.yml",
	"versionist.yml",
}

// FindConfigFile returns the first config file present under dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFromFile reads user values from a YAML file.
func LoadFromFile(path string) (map[string]Value, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return FromMap(k.Raw()), nil
}

// LoadFromBytes parses user values from raw YAML.
func LoadFromBytes(data []byte) (map[string]Value, error) {
	raw, err := yaml.Parser().Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return FromMap(raw), nil
}

// LoadFromEnv reads VERSIONIST_* variables for the given properties.
// VERSIONIST_CHANGELOG_FILE sets changelogFile. Values are coerced to a
// boolean or number when the property accepts one.
func LoadFromEnv(descriptors map[string]Descriptor) (map[string]Value, error) {
	names := make(map[string]string, len(descriptors))
	for prop := range descriptors {
		names[strings.ToLower(prop)] = prop
	}

	k := koanf.New(".")
	transform := func(key string) string {
		key = strings.TrimPrefix(key, EnvPrefix)
		return names[strings.ToLower(strings.ReplaceAll(key, "_", ""))]
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	out := make(map[string]Value)
	for prop, raw := range k.All() {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		out[prop] = coerce(descriptors[prop], s)
	}
	return out, nil
}

func coerce(d Descriptor, s string) Value {
	if d.accepts(KindBoolean) {
		if b, err := strconv.ParseBool(s); err == nil {
			return Bool(b)
		}
	}
	if d.accepts(KindNumber) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(n)
		}
	}
	return String(s)
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Dir is searched for the config file and .env.
	Dir string
	// File overrides config file discovery.
	File string
	// Overrides take precedence over the file and the environment.
	Overrides map[string]Value
	// SkipEnv disables the environment and .env layers.
	SkipEnv bool
}

// Load layers the config file, the environment and the overrides, then
// resolves them against registry.
func Load(registry *Registry, opts LoadOptions) (*Config, error) {
	b := NewBuilder(registry)

	// 1. Config file.
	path := opts.File
	if path == "" {
		path = FindConfigFile(opts.Dir)
	}
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		b.Add(fromFile)
	}

	// 2. Environment.
	if !opts.SkipEnv {
		if err := LoadDotEnv(opts.Dir); err != nil {
			return nil, err
		}
		fromEnv, err := LoadFromEnv(b.resolver.Descriptors)
		if err != nil {
			return nil, err
		}
		b.Add(fromEnv)
	}

	// 3. Overrides.
	b.Add(opts.Overrides)

	return b.Build()
}

// EnvName returns the environment variable that sets prop.
func EnvName(prop string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for i, r := range prop {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
