package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".java", cfg.SourceExtension)
	assert.Equal(t, ".class", cfg.ClassExtension)
	assert.Equal(t, uint16(52), cfg.MajorVersion)
	assert.Equal(t, "java/lang/Object", cfg.SuperClass)
	assert.False(t, cfg.LineNumbers)

	opts := cfg.GeneratorOptions()
	assert.Equal(t, cfg.SuperClass, opts.SuperClass)
	assert.Equal(t, cfg.MajorVersion, opts.MajorVersion)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir = "classes"
line_numbers = true

[log]
format = "json"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "classes", cfg.OutputDir)
	assert.True(t, cfg.LineNumbers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ".java", cfg.SourceExtension)
	assert.Equal(t, uint16(52), cfg.MajorVersion)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
super_class = "java.lang.Object"
source_extension = "java"

[log]
level = "loud"
`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "super_class")
	assert.Contains(t, err.Error(), "source_extension")
	assert.Contains(t, err.Error(), "log.level")

	require.NoError(t, os.WriteFile(path, []byte("debug = ["), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Debug = true
	cfg.OutputDir = "build/classes"
	cfg.MajorVersion = 61
	cfg.Log.Level = "debug"

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# 父类内部名")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	input := filepath.Join(nested, "A.json")
	require.NoError(t, os.WriteFile(input, []byte("{}"), 0644))

	assert.Equal(t, "", Find(input))

	require.NoError(t, Default().Save(filepath.Join(root, ConfigFileName)))
	found := Find(input)
	want, err := filepath.Abs(filepath.Join(root, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, want, found)

	assert.Equal(t, "", Find(filepath.Join(root, "missing")))
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))

	cfg.Debug = true
	cfg.Log.Format = "json"
	log, err = cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	cfg.Log.Level = "nope"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
