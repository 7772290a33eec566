package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0.0", "1.0.0"},
		{"v1.1.0", "1.1.0"},
		{"=2.0.0", "2.0.0"},
		{"  3.4.5  ", "3.4.5"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"1.0", ""},
		{"foo", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, Valid(tt.input))
		})
	}
}

func TestCheckValid(t *testing.T) {
	require.NoError(t, CheckValid("1.2.3"))

	err := CheckValid("foo")
	require.ErrorIs(t, err, ErrInvalidVersion)
	require.Equal(t, "invalid version: foo", err.Error())
}

func TestGreatest(t *testing.T) {
	got, err := Greatest([]string{"1.0.0", " 2.1.0 ", "2.0.10", "v0.9.0"})
	require.NoError(t, err)
	require.Equal(t, "2.1.0", got)
}

func TestGreatest_Single(t *testing.T) {
	got, err := Greatest([]string{"0.0.1"})
	require.NoError(t, err)
	require.Equal(t, "0.0.1", got)
}

func TestGreatest_Invalid(t *testing.T) {
	_, err := Greatest([]string{"1.0.0", "nope"})
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestGreatest_Empty(t *testing.T) {
	_, err := Greatest(nil)
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	c, err := Compare("1.0.0", "1.0.1")
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = Compare("v2.0.0", "2.0.0")
	require.NoError(t, err)
	require.Equal(t, 0, c)

	_, err = Compare("x", "1.0.0")
	require.Error(t, err)
}

func TestLessThan(t *testing.T) {
	require.True(t, LessThan("1.0.0", "1.1.0"))
	require.False(t, LessThan("1.1.0", "1.1.0"))
	require.False(t, LessThan("bad", "1.1.0"))
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		version string
		level   Level
		want    string
	}{
		{"1.2.3", LevelPatch, "1.2.4"},
		{"1.2.3", LevelMinor, "1.3.0"},
		{"1.2.3", LevelMajor, "2.0.0"},
		{"0.0.1", LevelMinor, "0.1.0"},
		{"v1.0.0", LevelPatch, "1.0.1"},
		{"1.2.3-rc.1", LevelPatch, "1.2.3"},
		{"1.2.3-rc.1", LevelMinor, "1.3.0"},
		{"1.2.0-rc.1", LevelMinor, "1.2.0"},
		{"1.2.0-rc.1", LevelMajor, "2.0.0"},
		{"1.0.0-rc.1", LevelMajor, "1.0.0"},
		{"1.0.0-rc.1", LevelMinor, "1.0.0"},
		{"1.2.3+build.5", LevelMajor, "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.version+"/"+tt.level.String(), func(t *testing.T) {
			got, err := Increment(tt.version, tt.level)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIncrement_InvalidVersion(t *testing.T) {
	_, err := Increment("foo", LevelPatch)
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestIncrement_InvalidLevel(t *testing.T) {
	_, err := Increment("1.0.0", LevelNone)
	require.ErrorIs(t, err, ErrInvalidLevel)

	_, err = Increment("1.0.0", Level(42))
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestIncrement_NeverDecreases(t *testing.T) {
	for _, v := range []string{"0.0.0", "0.9.9", "1.2.3", "10.0.7"} {
		for _, l := range ValidLevels {
			next, err := Increment(v, l)
			require.NoError(t, err)
			require.True(t, LessThan(v, next), "%s %s -> %s", v, l, next)
		}
	}
}

func TestIncrement_NotIdempotent(t *testing.T) {
	once, err := Increment("1.0.0", LevelPatch)
	require.NoError(t, err)
	twice, err := Increment(once, LevelPatch)
	require.NoError(t, err)
	require.NotEqual(t, once, twice)
	require.Equal(t, "1.0.2", twice)
}
