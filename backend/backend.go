// Package backend holds the process-wide compute-backend configuration the
// visualization bridge keys its descriptor tagging off, plus a WebGPU
// adapter probe for reporting the host's GPU identity.
package backend

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Arch identifies the active compute architecture.
type Arch int

const (
	ArchX64 Arch = iota
	ArchARM64
	ArchCUDA
	ArchVulkan
	ArchMetal
	ArchOpenGL
)

func (a Arch) String() string {
	switch a {
	case ArchX64:
		return "x64"
	case ArchARM64:
		return "arm64"
	case ArchCUDA:
		return "cuda"
	case ArchVulkan:
		return "vulkan"
	case ArchMetal:
		return "metal"
	case ArchOpenGL:
		return "opengl"
	default:
		return "unknown"
	}
}

// ParseArch converts an architecture name back into an Arch.
func ParseArch(s string) (Arch, error) {
	switch s {
	case "x64", "cpu":
		return ArchX64, nil
	case "arm64":
		return ArchARM64, nil
	case "cuda":
		return ArchCUDA, nil
	case "vulkan":
		return ArchVulkan, nil
	case "metal":
		return ArchMetal, nil
	case "opengl":
		return ArchOpenGL, nil
	default:
		return 0, fmt.Errorf("unknown arch %q", s)
	}
}

// Config is the active backend configuration. Arch is fixed for the life of
// the process once Init has run, mirroring how the compute runtime pins its
// target at startup.
type Config struct {
	Arch        Arch `yaml:"-"`
	Debug       bool `yaml:"debug"`
	DeviceIndex int  `yaml:"device_index"`

	// ArchName is the YAML-facing spelling of Arch.
	ArchName string `yaml:"arch"`
}

var (
	mu     sync.RWMutex
	cfg    = Config{Arch: ArchX64, DeviceIndex: -1}
	logger = zap.NewNop()
)

// Option mutates the configuration during Init.
type Option func(*Config)

// WithArch selects the active compute architecture.
func WithArch(a Arch) Option {
	return func(c *Config) { c.Arch = a }
}

// WithDebug toggles debug mode.
func WithDebug(d bool) Option {
	return func(c *Config) { c.Debug = d }
}

// WithDeviceIndex pins the GPU adapter ordinal; negative selects
// automatically.
func WithDeviceIndex(i int) Option {
	return func(c *Config) { c.DeviceIndex = i }
}

// Init installs a new active configuration. Later calls replace the earlier
// one wholesale; partial mutation of a live config is not supported.
func Init(opts ...Option) {
	mu.Lock()
	defer mu.Unlock()
	cfg = Config{Arch: ArchX64, DeviceIndex: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.ArchName = cfg.Arch.String()
	logger.Info("backend configured",
		zap.String("arch", cfg.Arch.String()),
		zap.Bool("debug", cfg.Debug),
		zap.Int("device", cfg.DeviceIndex))
}

// Default returns a copy of the active configuration.
func Default() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// SetLogger installs a structured logger; a nil logger restores the no-op
// default.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// L returns the package logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
