package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "../data", c.DataDir)
	assert.Equal(t, "charts", c.ChartsDir)
	assert.Equal(t, "png", c.ChartFormat)
	assert.Equal(t, 8.0, c.ChartWidthIn)
	assert.Equal(t, 6.0, c.ChartHeightIn)
	assert.Equal(t, "text", c.LogFormat)
}

func TestSaveThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("chart_format", "SVG"))
	require.NoError(t, c.Set("na_values", "?, -"))
	require.NoError(t, Save(c, ""))
	assert.FileExists(t, filepath.Join(home, ".edakit", "config.yaml"))

	back, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "svg", back.ChartFormat)
	assert.Equal(t, []string{"?", "-"}, back.NAValues)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "edakit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("charts_dir: from-file\nlog_level: warn\n"), 0o644))
	t.Setenv("EDAKIT_CHARTS_DIR", "from-env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.ChartsDir)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadExpandsHomeInDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "edakit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: ~/data\ncharts_dir: ~/out/charts\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), c.DataDir)
	assert.Equal(t, filepath.Join(home, "out", "charts"), c.ChartsDir)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chart_format: gif\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart_format")
}

func TestSetRejects(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	cases := []struct{ key, val string }{
		{"chart_format", "gif"},
		{"chart_width_in", "-1"},
		{"chart_height_in", "tall"},
		{"log_format", "xml"},
		{"delimiter", ";;"},
	}
	for _, tc := range cases {
		assert.Error(t, c.Set(tc.key, tc.val), tc.key)
	}
	assert.ErrorIs(t, c.Set("api_key", "x"), ErrUnknownKey)
	assert.Equal(t, "png", c.ChartFormat, "rejected values leave config unchanged")
	assert.Equal(t, 8.0, c.ChartWidthIn)
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": 0, ",": ',', "tab": '\t', `\t`: '\t', ";": ';', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDelimiter("ab")
	assert.Error(t, err)
}

func TestValuesFollowKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	vals := c.Values()
	keys := Keys()
	require.Len(t, vals, len(keys))
	for i, kv := range vals {
		assert.Equal(t, keys[i], kv[0])
	}
}
