// Package gpu owns the process-wide WebGPU context used to carry field
// storage into GPU-visible buffers.
package gpu

import (
	"fmt"
	"sync"

	"github.com/openfluke/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/quarkframe/strata/backend"
)

// Context holds the single WebGPU context for the process.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	once     sync.Once
}

var ctx Context

// GetContext returns the singleton GPU context, initializing it if necessary.
// Adapter choice honors backend.Config.DeviceIndex when the instance can
// enumerate adapters; otherwise it falls back through power preferences.
func GetContext() (*Context, error) {
	var initErr error
	ctx.once.Do(func() {
		log := backend.L()

		ctx.Instance = wgpu.CreateInstance(nil)
		if ctx.Instance == nil {
			initErr = fmt.Errorf("failed to create WebGPU instance")
			return
		}

		// 0. Honor an explicit device ordinal from the backend config.
		want := backend.Default().DeviceIndex
		adapters := ctx.Instance.EnumerateAdapters(nil)
		if want >= 0 && want < len(adapters) {
			a := adapters[want]
			info := a.GetInfo()
			log.Info("selecting adapter by device index",
				zap.Int("index", want),
				zap.String("name", info.Name),
				zap.String("backend", info.BackendType.String()))
			ctx.Adapter = a
		}

		tryInit := func(opts *wgpu.RequestAdapterOptions) error {
			if ctx.Adapter != nil {
				return nil
			}
			var err error
			ctx.Adapter, err = ctx.Instance.RequestAdapter(opts)
			return err
		}

		// 1. High performance, 2. low power, 3. whatever is there.
		if ctx.Adapter == nil {
			initErr = tryInit(&wgpu.RequestAdapterOptions{
				PowerPreference: wgpu.PowerPreferenceHighPerformance,
			})
		}
		if initErr != nil && ctx.Adapter == nil {
			log.Warn("high performance adapter failed, falling back", zap.Error(initErr))
			initErr = tryInit(&wgpu.RequestAdapterOptions{
				PowerPreference: wgpu.PowerPreferenceLowPower,
			})
		}
		if initErr != nil && ctx.Adapter == nil {
			log.Warn("low power adapter failed, trying default", zap.Error(initErr))
			initErr = tryInit(nil)
		}
		if ctx.Adapter == nil {
			initErr = fmt.Errorf("all adapter attempts failed: %v", initErr)
			return
		}

		info := ctx.Adapter.GetInfo()
		log.Info("using GPU adapter",
			zap.String("name", info.Name),
			zap.String("vendor", info.VendorName),
			zap.String("backend", info.BackendType.String()))

		var err error
		ctx.Device, err = ctx.Adapter.RequestDevice(nil)
		if err != nil {
			initErr = err
			return
		}
		ctx.Queue = ctx.Device.GetQueue()
	})

	if initErr != nil {
		return nil, initErr
	}
	if ctx.Device == nil || ctx.Queue == nil {
		return nil, fmt.Errorf("WebGPU device or queue not initialized")
	}
	return &ctx, nil
}

// EnsureGPU ensures the GPU context is initialized.
func EnsureGPU() error {
	_, err := GetContext()
	return err
}
