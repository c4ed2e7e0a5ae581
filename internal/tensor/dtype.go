// Package tensor provides the core tensor types and operations used by qdensity.
package tensor

// Float is the constraint for tensor element types.
// Density matrices are built from real parameters, so only the two IEEE
// floating-point widths are supported; the choice of width is the precision
// of the whole computation.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDataType maps a dtype name back to its DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32", "F32":
		return Float32, true
	case "float64", "F64":
		return Float64, true
	default:
		return 0, false
	}
}

// DataTypeOf returns the runtime tag for the element type T.
func DataTypeOf[T Float]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported type")
	}
}
