// Package vis bridges placed fields to the rendering layer: it extracts
// normalized field descriptors and binds field storage into GPU-visible
// buffers.
package vis

import (
	"errors"
	"fmt"

	"github.com/quarkframe/strata/backend"
	"github.com/quarkframe/strata/field"
)

// FieldSource tags which compute backend produced a field's storage.
type FieldSource int

const (
	SourceError FieldSource = iota
	SourceCUDA
	SourceX64
	SourceVulkan
)

func (s FieldSource) String() string {
	switch s {
	case SourceCUDA:
		return "cuda"
	case SourceX64:
		return "x64"
	case SourceVulkan:
		return "vulkan"
	default:
		return "error"
	}
}

// ErrUnsupportedBackend is returned when the active arch has no
// visualization mapping. Callers must not fall back silently.
var ErrUnsupportedBackend = errors.New("unsupported compute backend for visualization")

// FieldDescriptor is a transient snapshot of a field's metadata, recomputed
// on demand. When Valid is false every other member is undefined and must be
// ignored.
type FieldDescriptor struct {
	Valid  bool           `json:"valid"`
	Source FieldSource    `json:"source"`
	Shape  []int          `json:"shape"`
	DType  field.DType    `json:"dtype"`
	SNode  field.NodeID   `json:"snode"`
	Kind   field.ElemKind `json:"kind"`
	Rows   int            `json:"rows"`
	Cols   int            `json:"cols"`
}

// Describe extracts a descriptor for f under the active backend config. A
// nil field yields the invalid sentinel descriptor and no error; an arch
// outside the supported set is a hard error.
func Describe(f *field.Field) (FieldDescriptor, error) {
	return DescribeWith(backend.Default(), f)
}

// DescribeWith is Describe against an explicit config.
func DescribeWith(cfg backend.Config, f *field.Field) (FieldDescriptor, error) {
	if f == nil {
		return FieldDescriptor{Valid: false}, nil
	}

	src, err := sourceForArch(cfg.Arch)
	if err != nil {
		return FieldDescriptor{}, err
	}
	if f.Node() == nil {
		return FieldDescriptor{}, fmt.Errorf("field %s: %w", f.Name(), field.ErrNotPlaced)
	}

	d := FieldDescriptor{
		Valid:  true,
		Source: src,
		Shape:  f.Shape(),
		DType:  f.DType(),
		SNode:  f.Node().ID(),
		Kind:   f.Kind(),
		Rows:   f.Rows(),
		Cols:   f.Cols(),
	}
	return d, nil
}

// sourceForArch is a closed mapping; ARM64 hosts share the x64 tag. Anything
// else fails rather than defaulting.
func sourceForArch(a backend.Arch) (FieldSource, error) {
	switch a {
	case backend.ArchCUDA:
		return SourceCUDA, nil
	case backend.ArchX64, backend.ArchARM64:
		return SourceX64, nil
	case backend.ArchVulkan:
		return SourceVulkan, nil
	default:
		return SourceError, fmt.Errorf("%w: %s", ErrUnsupportedBackend, a)
	}
}
