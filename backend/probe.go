package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openfluke/webgpu/wgpu"
	"go.uber.org/zap"
)

// Report is a portable summary of the adapter the host would hand the
// visualization layer.
type Report struct {
	WhenISO  string `json:"when_iso"`
	Backend  string `json:"backend"`
	Arch     string `json:"arch,omitempty"` // mapped Arch name, empty if unmapped
	Name     string `json:"name"`
	VendorID string `json:"vendor_id_hex"`
	DeviceID string `json:"device_id_hex"`
	Driver   string `json:"driver"`
	Limits   Limits `json:"limits"`
}

type Limits struct {
	MaxStorageBufferBindingSize uint64 `json:"max_storage_buffer_binding_size"`
	MaxBufferSize               uint64 `json:"max_buffer_size"`
	MaxBindGroups               uint32 `json:"max_bind_groups"`
}

// ProbeJSON runs a probe and returns the JSON string.
func ProbeJSON() (string, error) {
	rep, err := Probe()
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Probe requests the default adapter and synthesizes a report. Requires a
// working WebGPU runtime on the host.
func Probe() (*Report, error) {
	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("wgpu.CreateInstance returned nil")
	}
	defer inst.Release()

	adapter, err := inst.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	if adapter == nil {
		return nil, fmt.Errorf("no adapter")
	}
	defer adapter.Release()

	info := adapter.GetInfo()
	limits := adapter.GetLimits()

	rep := &Report{
		WhenISO:  time.Now().UTC().Format(time.RFC3339),
		Backend:  info.BackendType.String(),
		Name:     strings.TrimSpace(info.Name),
		VendorID: fmt.Sprintf("0x%04x", info.VendorId),
		DeviceID: fmt.Sprintf("0x%04x", info.DeviceId),
		Driver:   strings.TrimSpace(info.DriverDescription),
		Limits: Limits{
			MaxStorageBufferBindingSize: limits.Limits.MaxStorageBufferBindingSize,
			MaxBufferSize:               limits.Limits.MaxBufferSize,
			MaxBindGroups:               limits.Limits.MaxBindGroups,
		},
	}
	if arch, ok := archForBackendType(info.BackendType); ok {
		rep.Arch = arch.String()
	}

	L().Info("adapter probed",
		zap.String("backend", rep.Backend),
		zap.String("name", rep.Name),
		zap.String("arch", rep.Arch))
	return rep, nil
}

// archForBackendType maps a WebGPU backend to the compute Arch it implies.
// Direct3D adapters have no counterpart in the Arch enumeration.
func archForBackendType(b wgpu.BackendType) (Arch, bool) {
	switch b {
	case wgpu.BackendTypeVulkan:
		return ArchVulkan, true
	case wgpu.BackendTypeMetal:
		return ArchMetal, true
	case wgpu.BackendTypeOpenGL, wgpu.BackendTypeOpenGLES:
		return ArchOpenGL, true
	default:
		return 0, false
	}
}
