package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7778", cfg.Addr)
	assert.Equal(t, ".md", cfg.Ext)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "json", cfg.Codec)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Rules)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dict/prh.yml", `
version: 1
rules:
  - expected: JavaScript
    patterns: [javascript, Javascript]
`)
	path := writeFile(t, dir, ".textchecker.yaml", `
ext: txt
debounce: 50ms
codec: msgpack
log:
  level: debug
rules:
  no-todo: true
  no-doubled-space: false
  max-line-length:
    max: 80
  prh:
    rulePaths: [dict/prh.yml]
`)
	t.Setenv("TEXTCHECKER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, ".txt", cfg.Ext)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "msgpack", cfg.Codec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)

	require.Len(t, cfg.Rules, 4)
	byID := map[string]RuleConfig{}
	for _, rule := range cfg.Rules {
		byID[rule.ID] = rule
	}
	assert.False(t, byID["no-doubled-space"].Enabled)
	assert.True(t, byID["no-todo"].Enabled)
	max, ok := Option(byID["max-line-length"].Options, "max")
	require.True(t, ok)
	assert.EqualValues(t, 80, max)

	entries, ok := Option(byID["prh"].Options, "rules")
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "JavaScript", entries.([]any)[0].(map[string]any)["expected"])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Codec: "xml"}
	assert.Error(t, cfg.Validate())

	cfg = Config{Codec: "json", Debounce: -time.Second}
	assert.Error(t, cfg.Validate())
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(map[string]any{
		"b": false,
		"a": map[string]any{"max": 10},
		"c": nil,
	})
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{rules[0].ID, rules[1].ID, rules[2].ID})
	assert.True(t, rules[0].Enabled)
	assert.False(t, rules[1].Enabled)
	assert.True(t, rules[2].Enabled)

	_, err = ParseRules([]any{"a"})
	assert.Error(t, err)
	_, err = ParseRules(map[string]any{"a": 3})
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("codec", "json", "")
	flags.String("worker-url", "", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--codec", "msgpack", "--worker-url", "ws://127.0.0.1:9000"}))

	v := viper.New()
	require.NoError(t, BindFlags(v, flags))
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "msgpack", cfg.Codec)
	assert.Equal(t, "ws://127.0.0.1:9000", cfg.WorkerURL)
	assert.Equal(t, "info", cfg.Log.Level)
}
