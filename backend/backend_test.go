package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndDefault(t *testing.T) {
	Init(WithArch(ArchVulkan), WithDebug(true), WithDeviceIndex(1))
	defer Init()

	cfg := Default()
	assert.Equal(t, ArchVulkan, cfg.Arch)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 1, cfg.DeviceIndex)
	assert.Equal(t, "vulkan", cfg.ArchName)

	// Re-init replaces wholesale.
	Init(WithArch(ArchCUDA))
	cfg = Default()
	assert.Equal(t, ArchCUDA, cfg.Arch)
	assert.False(t, cfg.Debug)
	assert.Equal(t, -1, cfg.DeviceIndex, "device index resets to auto")
}

func TestParseArch(t *testing.T) {
	for name, want := range map[string]Arch{
		"x64": ArchX64, "cpu": ArchX64, "arm64": ArchARM64,
		"cuda": ArchCUDA, "vulkan": ArchVulkan, "metal": ArchMetal,
	} {
		got, err := ParseArch(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseArch("dx12")
	assert.Error(t, err)
}

func TestArchStringRoundTrip(t *testing.T) {
	for _, a := range []Arch{ArchX64, ArchARM64, ArchCUDA, ArchVulkan, ArchMetal, ArchOpenGL} {
		got, err := ParseArch(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arch: cuda\ndebug: true\ndevice_index: 2\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ArchCUDA, cfg.Arch)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.DeviceIndex)
}

func TestLoadConfigDefaultsArch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ArchX64, cfg.Arch)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("arch: quantum\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}
