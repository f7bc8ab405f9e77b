package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML backend configuration, e.g.:
//
//	arch: vulkan
//	debug: true
//	device_index: 0
func LoadConfig(path string) (Config, error) {
	c := Config{DeviceIndex: -1}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if c.ArchName == "" {
		c.Arch = ArchX64
		c.ArchName = c.Arch.String()
		return c, nil
	}
	c.Arch, err = ParseArch(c.ArchName)
	if err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// InitFromFile loads a YAML config and installs it as the active one.
func InitFromFile(path string) error {
	c, err := LoadConfig(path)
	if err != nil {
		return err
	}
	Init(WithArch(c.Arch), WithDebug(c.Debug), WithDeviceIndex(c.DeviceIndex))
	return nil
}
