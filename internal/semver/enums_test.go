package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelNone, ""},
		{LevelPatch, "patch"},
		{LevelMinor, "minor"},
		{LevelMajor, "major"},
		{Level(99), "Level(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestLevel_IsValid(t *testing.T) {
	require.False(t, LevelNone.IsValid())
	require.True(t, LevelPatch.IsValid())
	require.True(t, LevelMinor.IsValid())
	require.True(t, LevelMajor.IsValid())
	require.False(t, Level(-1).IsValid())
	require.False(t, Level(4).IsValid())
}

func TestValidLevels_Order(t *testing.T) {
	require.Equal(t, []Level{LevelPatch, LevelMinor, LevelMajor}, ValidLevels)
}

func TestHigher(t *testing.T) {
	tests := []struct {
		name string
		a, b Level
		want Level
	}{
		{"both none", LevelNone, LevelNone, LevelNone},
		{"none and patch", LevelNone, LevelPatch, LevelPatch},
		{"patch and none", LevelPatch, LevelNone, LevelPatch},
		{"patch and minor", LevelPatch, LevelMinor, LevelMinor},
		{"major and minor", LevelMajor, LevelMinor, LevelMajor},
		{"minor tie", LevelMinor, LevelMinor, LevelMinor},
		{"major and patch", LevelMajor, LevelPatch, LevelMajor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Higher(tt.a, tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHigher_InvalidFirst(t *testing.T) {
	_, err := Higher(Level(7), LevelPatch)
	require.ErrorIs(t, err, ErrInvalidLevel)
	require.Contains(t, err.Error(), "Level(7)")
}

func TestHigher_InvalidSecond(t *testing.T) {
	_, err := Higher(LevelMajor, Level(-3))
	require.ErrorIs(t, err, ErrInvalidLevel)
}
