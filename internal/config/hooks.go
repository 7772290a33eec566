package config

import (
	"context"
	"reflect"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// Hook signatures for function properties that have no natural home in a
// lower package.
type (
	// DocumentedVersionsFunc lists the versions already in a changelog file.
	DocumentedVersionsFunc func(file string) ([]string, error)
	// BaseVersionFunc picks the current version from the documented ones.
	BaseVersionFunc func(versions []string) (string, error)
	// ReferenceFunc maps a version to a git reference name.
	ReferenceFunc func(version string) string
	// ChangelogWriter adds a rendered entry to a changelog file.
	ChangelogWriter func(file, entry string) error
	// HistoryWriter records a release in the history file.
	HistoryWriter func(file string, release gitlog.Release) error
	// VersionUpdater writes version into the manifests under dir.
	VersionUpdater func(ctx context.Context, dir, version string) error
)

// AsHook converts impl to the hook type F. Plain func literals with the
// same signature convert too.
func AsHook[F any](impl any) (F, bool) {
	var zero F
	if f, ok := impl.(F); ok {
		return f, true
	}
	if impl == nil {
		return zero, false
	}
	target := reflect.TypeFor[F]()
	v := reflect.ValueOf(impl)
	if target.Kind() != reflect.Func || v.Kind() != reflect.Func || !v.Type().ConvertibleTo(target) {
		return zero, false
	}
	if v.IsNil() {
		return zero, false
	}
	return v.Convert(target).Interface().(F), true
}

// HookCheck returns a Descriptor check accepting implementations of F.
func HookCheck[F any]() func(any) bool {
	return func(impl any) bool {
		_, ok := AsHook[F](impl)
		return ok
	}
}
