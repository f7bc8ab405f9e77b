package vis

import (
	"errors"
	"fmt"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/quarkframe/strata/field"
	"github.com/quarkframe/strata/gpu"
)

// BoundField couples a descriptor with the GPU buffer holding the field's
// cells. The rendering layer consumes the buffer; Release frees it.
type BoundField struct {
	Desc   FieldDescriptor
	Buffer *wgpu.Buffer
	Size   uint64
}

// Bind uploads f's backing storage into a storage buffer. Requires a live
// WebGPU context; desc must be a valid descriptor of f.
func Bind(desc FieldDescriptor, f *field.Field) (*BoundField, error) {
	if !desc.Valid {
		return nil, errors.New("cannot bind an invalid descriptor")
	}
	if f == nil || f.Node() == nil {
		return nil, errors.New("cannot bind an unplaced field")
	}
	if desc.SNode != f.Node().ID() {
		return nil, fmt.Errorf("descriptor snode %d does not match field snode %d",
			desc.SNode, f.Node().ID())
	}

	data := f.Bytes()
	buf, err := gpu.NewByteBuffer(data,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("binding field %s: %w", f.Name(), err)
	}
	return &BoundField{Desc: desc, Buffer: buf, Size: uint64(len(data))}, nil
}

// Readback copies the buffer contents back to host memory, mainly for
// debugging the binding path.
func (b *BoundField) Readback() ([]byte, error) {
	return gpu.ReadBytes(b.Buffer, int(b.Size))
}

// Release destroys the GPU buffer.
func (b *BoundField) Release() {
	if b.Buffer != nil {
		b.Buffer.Destroy()
		b.Buffer = nil
	}
}
