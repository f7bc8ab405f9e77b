package field

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DType identifies the scalar element type of a field.
type DType int

const (
	F32 DType = iota
	F64
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
)

// Size returns the byte size of one scalar of this type.
func (dt DType) Size() int {
	switch dt {
	case F32, I32, U32:
		return 4
	case F64, I64, U64:
		return 8
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	default:
		return 0
	}
}

// String returns a human-readable name for the data type.
func (dt DType) String() string {
	switch dt {
	case F32:
		return "f32"
	case F64:
		return "f64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	default:
		return "unknown"
	}
}

// ParseDType converts a type name (as accepted on the CLI and in config
// files) back into a DType.
func ParseDType(s string) (DType, error) {
	switch s {
	case "f32", "float32":
		return F32, nil
	case "f64", "float64":
		return F64, nil
	case "i8", "int8":
		return I8, nil
	case "i16", "int16":
		return I16, nil
	case "i32", "int32":
		return I32, nil
	case "i64", "int64":
		return I64, nil
	case "u8", "uint8":
		return U8, nil
	case "u16", "uint16":
		return U16, nil
	case "u32", "uint32":
		return U32, nil
	case "u64", "uint64":
		return U64, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}

// putScalar encodes v into buf (little endian, matching GPU buffer layout).
// v must be the exact Go type for dt.
func putScalar(buf []byte, dt DType, v any) error {
	switch dt {
	case F32:
		f, ok := v.(float32)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
	case F64:
		f, ok := v.(float64)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
	case I8:
		n, ok := v.(int8)
		if !ok {
			return typeMismatch(dt, v)
		}
		buf[0] = byte(n)
	case I16:
		n, ok := v.(int16)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint16(buf, uint16(n))
	case I32:
		n, ok := v.(int32)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint32(buf, uint32(n))
	case I64:
		n, ok := v.(int64)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint64(buf, uint64(n))
	case U8:
		n, ok := v.(uint8)
		if !ok {
			return typeMismatch(dt, v)
		}
		buf[0] = n
	case U16:
		n, ok := v.(uint16)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint16(buf, n)
	case U32:
		n, ok := v.(uint32)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint32(buf, n)
	case U64:
		n, ok := v.(uint64)
		if !ok {
			return typeMismatch(dt, v)
		}
		binary.LittleEndian.PutUint64(buf, n)
	default:
		return fmt.Errorf("unsupported dtype %d", int(dt))
	}
	return nil
}

// getScalar decodes one scalar of type dt from buf.
func getScalar(buf []byte, dt DType) (any, error) {
	switch dt {
	case F32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
	case F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	case I8:
		return int8(buf[0]), nil
	case I16:
		return int16(binary.LittleEndian.Uint16(buf)), nil
	case I32:
		return int32(binary.LittleEndian.Uint32(buf)), nil
	case I64:
		return int64(binary.LittleEndian.Uint64(buf)), nil
	case U8:
		return buf[0], nil
	case U16:
		return binary.LittleEndian.Uint16(buf), nil
	case U32:
		return binary.LittleEndian.Uint32(buf), nil
	case U64:
		return binary.LittleEndian.Uint64(buf), nil
	default:
		return nil, fmt.Errorf("unsupported dtype %d", int(dt))
	}
}

func typeMismatch(dt DType, v any) error {
	return fmt.Errorf("value %T does not match dtype %s", v, dt)
}
