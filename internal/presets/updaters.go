package presets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/logger"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

const (
	defaultInitPy = "__init__.py"
	versionFile   = "VERSION"
	contractFile  = "balena.yml"
	isoMillis     = "2006-01-02T15:04:05.000Z"

	// quotedValue matches a single or double quoted string on one line.
	quotedValue = `("[^"\n]*"|'[^'\n]*')`
	semverCore  = `(?:0|[1-9]\d*)\.(?:0|[1-9]\d*)\.(?:0|[1-9]\d*)`
)

var (
	cargoPackageVersion = regexp.MustCompile(`(?m)(\[package\][^\[]+?version\s*=\s*)` + quotedValue)
	initPyVersion       = regexp.MustCompile(`(__version__\s*=\s*)('` + semverCore + `'|"` + semverCore + `")`)
)

var jsonStyle = &pretty.Options{Indent: "  "}

func updaters(deps Deps) map[string]config.Preset {
	withClean := func(build func(clean func(string) string) config.VersionUpdater) config.Preset {
		return func(opts config.Options) (config.Value, error) {
			clean, err := cleanFunc(opts)
			if err != nil {
				return nil, err
			}
			return config.Literal(build(clean)), nil
		}
	}

	return map[string]config.Preset{
		"npm": withClean(func(clean func(string) string) config.VersionUpdater {
			return NPM(clean, deps.now)
		}),
		"cargo": withClean(Cargo),
		"initPy": func(opts config.Options) (config.Value, error) {
			clean, err := cleanFunc(opts)
			if err != nil {
				return nil, err
			}
			return config.Literal(InitPy(opts.String("targetFile", defaultInitPy), clean)), nil
		},
		"quoted": func(opts config.Options) (config.Value, error) {
			u, err := Quoted(opts)
			if err != nil {
				return nil, err
			}
			return config.Literal(u), nil
		},
		"update-version-file": fixed(config.VersionUpdater(VersionFile)),
		"contract":            withClean(Contract),
		"mixed": withClean(func(clean func(string) string) config.VersionUpdater {
			return Mixed(
				NPM(clean, deps.now),
				Cargo(clean),
				VersionFile,
				InitPy(defaultInitPy, clean),
			)
		}),
	}
}

func cleaned(clean func(string) string, version string) (string, error) {
	v := clean(version)
	if v == "" {
		return "", fmt.Errorf("%w: %s", semver.ErrInvalidVersion, version)
	}
	return v, nil
}

// NPM writes the version into package.json, stamps versionist.publishedAt,
// and updates package-lock.json and npm-shrinkwrap.json when present.
func NPM(clean func(string) string, now func() time.Time) config.VersionUpdater {
	return func(_ context.Context, dir, version string) error {
		v, err := cleaned(clean, version)
		if err != nil {
			return err
		}

		// 1. package.json must exist.
		err = updateJSON(filepath.Join(dir, "package.json"), func(doc []byte) ([]byte, error) {
			doc, err := sjson.SetBytes(doc, "version", v)
			if err != nil {
				return nil, err
			}
			return sjson.SetBytes(doc, "versionist.publishedAt", now().UTC().Format(isoMillis))
		})
		if err != nil {
			return err
		}

		// 2. Lock files are optional.
		for _, name := range []string{"package-lock.json", "npm-shrinkwrap.json"} {
			err := updateJSON(filepath.Join(dir, name), func(doc []byte) ([]byte, error) {
				return setLockVersion(doc, v)
			})
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		return nil
	}
}

// setLockVersion sets the top-level version and, for lockfileVersion 2 and
// later, the version of the root package entry keyed "".
func setLockVersion(doc []byte, version string) ([]byte, error) {
	doc, err := sjson.SetBytes(doc, "version", version)
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(doc, "lockfileVersion").Int() < 2 {
		return doc, nil
	}
	packages := gjson.GetBytes(doc, "packages")
	if !packages.IsObject() {
		return doc, nil
	}

	// sjson paths cannot address an empty key, so rebuild the object.
	var found bool
	var b bytes.Buffer
	b.WriteByte('{')
	first := true
	var setErr error
	packages.ForEach(func(key, value gjson.Result) bool {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(key.Raw)
		b.WriteByte(':')
		raw := value.Raw
		if key.String() == "" && value.Get("version").String() != "" {
			raw, setErr = sjson.Set(raw, "version", version)
			if setErr != nil {
				return false
			}
			found = true
		}
		b.WriteString(raw)
		return true
	})
	if setErr != nil {
		return nil, setErr
	}
	if !found {
		return doc, nil
	}
	b.WriteByte('}')
	return sjson.SetRawBytes(doc, "packages", b.Bytes())
}

// updateJSON edits a JSON file in place, keeping key order and writing it
// back with two-space indentation and a trailing newline.
func updateJSON(path string, edit func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("parsing %s: invalid JSON", path)
	}
	data, err = edit(data)
	if err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	out := pretty.PrettyOptions(data, jsonStyle)
	out = append(bytes.TrimRight(out, "\n"), '\n')
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// Cargo updates the [package] version in Cargo.toml and the matching entry
// in Cargo.lock when present.
func Cargo(clean func(string) string) config.VersionUpdater {
	return func(_ context.Context, dir, version string) error {
		v, err := cleaned(clean, version)
		if err != nil {
			return err
		}

		manifest := filepath.Join(dir, "Cargo.toml")
		data, err := os.ReadFile(manifest)
		if err != nil {
			return fmt.Errorf("reading %s: %w", manifest, err)
		}
		var m cargoManifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parsing %s: %w", manifest, err)
		}
		if m.Package.Name == "" {
			return fmt.Errorf("package name not found in %s", manifest)
		}

		lock := filepath.Join(dir, "Cargo.lock")
		if _, err := os.Stat(lock); err == nil {
			entry := regexp.MustCompile(`(?m)(name\s*=\s*["']` + regexp.QuoteMeta(m.Package.Name) + `["'][^\[]+?version\s*=\s*)` + quotedValue)
			if err := replaceInFile(lock, entry, v, 1, true); err != nil {
				return err
			}
		}
		return replaceInFile(manifest, cargoPackageVersion, v, 1, true)
	}
}

// InitPy rewrites every __version__ assignment in a Python module.
func InitPy(target string, clean func(string) string) config.VersionUpdater {
	return func(_ context.Context, dir, version string) error {
		v, err := cleaned(clean, version)
		if err != nil {
			return err
		}
		return replaceInFile(filepath.Join(dir, target), initPyVersion, v, -1, false)
	}
}

// Quoted replaces the quoted string that follows a user supplied pattern.
// Options: baseDir, file, regex, regexFlags and clean.
func Quoted(opts config.Options) (config.VersionUpdater, error) {
	baseDir := opts.String("baseDir", ".")
	if filepath.IsAbs(baseDir) {
		return nil, errors.New("baseDir option can't be an absolute path")
	}
	file := opts.String("file", "")
	if file == "" {
		return nil, errors.New("missing file option")
	}
	if filepath.IsAbs(file) {
		return nil, errors.New("file option can't be an absolute path")
	}
	pattern := opts.String("regex", "")
	if pattern == "" {
		return nil, errors.New("missing regex option")
	}

	flags, global, err := regexFlags(opts.String("regexFlags", ""))
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(flags + "(" + pattern + ")" + quotedValue)
	if err != nil {
		return nil, fmt.Errorf("compiling regex option: %w", err)
	}
	clean, err := cleanFunc(opts)
	if err != nil {
		return nil, err
	}

	n := 1
	if global {
		n = -1
	}
	return func(_ context.Context, dir, version string) error {
		v, err := cleaned(clean, version)
		if err != nil {
			return err
		}
		return replaceInFile(filepath.Join(dir, baseDir, file), re, v, n, true)
	}, nil
}

// regexFlags maps JavaScript style flags onto a Go flag group. g selects
// replacing every match.
func regexFlags(flags string) (string, bool, error) {
	var goFlags strings.Builder
	global := false
	seen := map[rune]bool{}
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case 'i', 'm', 's':
			goFlags.WriteRune(f)
		case 'g':
			global = true
		case 'u':
		default:
			return "", false, fmt.Errorf("unsupported regex flag %q", f)
		}
	}
	if goFlags.Len() == 0 {
		return "", global, nil
	}
	return "(?" + goFlags.String() + ")", global, nil
}

// replaceInFile swaps the contents of the last group of up to n matches of
// re for version, keeping the original quote character.
func replaceInFile(path string, re *regexp.Regexp, version string, n int, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	matches := re.FindAllStringSubmatchIndex(content, n)
	if len(matches) == 0 {
		if required {
			return fmt.Errorf("pattern does not match %s", path)
		}
		logger.Debug("no version found", "file", path)
		return nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		start, end := loc[len(loc)-2], loc[len(loc)-1]
		quote := content[start : start+1]
		b.WriteString(content[last:start])
		b.WriteString(quote + version + quote)
		last = end
	}
	b.WriteString(content[last:])

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Contract sets the top level version key of balena.yml. A project without
// a contract is left alone.
func Contract(clean func(string) string) config.VersionUpdater {
	return func(_ context.Context, dir, version string) error {
		v, err := cleaned(clean, version)
		if err != nil {
			return err
		}

		path := filepath.Join(dir, contractFile)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if doc.Kind == 0 {
			doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
		}
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", path)
		}
		setMappingValue(root, "version", v)

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}
}

func setMappingValue(m *yaml.Node, key, value string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			n := m.Content[i+1]
			n.Kind, n.Tag, n.Style, n.Value, n.Content = yaml.ScalarNode, "!!str", 0, value, nil
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

// VersionFile writes the version, as given, to a VERSION file.
func VersionFile(_ context.Context, dir, version string) error {
	path := filepath.Join(dir, versionFile)
	if err := os.WriteFile(path, []byte(version), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Mixed runs every updater concurrently and ignores their failures, so a
// project is updated in whichever formats it happens to use.
func Mixed(updaters ...config.VersionUpdater) config.VersionUpdater {
	return func(ctx context.Context, dir, version string) error {
		var g errgroup.Group
		for _, u := range updaters {
			g.Go(func() error {
				if err := u(ctx, dir, version); err != nil {
					logger.Debug("updater skipped", "err", err)
				}
				return nil
			})
		}
		return g.Wait()
	}
}
