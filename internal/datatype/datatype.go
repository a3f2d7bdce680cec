// internal/datatype/datatype.go
package datatype

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind is a traced scalar type.
//
// Numeric values are spaced per group so new kinds can be added
// without renumbering existing handshakes.
type Kind uint8

// ---- unsigned ----

const (
	Uint8  Kind = 0
	Uint16 Kind = 1
	Uint32 Kind = 2
	Uint64 Kind = 3
)

// ---- signed ----

const (
	Int8  Kind = 10
	Int16 Kind = 11
	Int32 Kind = 12
	Int64 Kind = 13
)

// ---- floating point ----

const (
	Float32 Kind = 20
	Float64 Kind = 21

	// Double is a deprecated alias for Float64.
	Double = Float64
)

// ---- misc ----

const (
	Bool Kind = 30

	// String is only valid in handshake metadata, never in a sample payload.
	String Kind = 31
)

// MaxWidth is the widest payload kind in bytes.
const MaxWidth = 8

// Width returns the payload size of k in bytes.
// String and unknown kinds report 0.
func Width(k Kind) int {
	switch k {
	case Uint8, Int8, Bool:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k can be traced.
func (k Kind) Valid() bool {
	return Width(k) > 0
}

var names = map[Kind]string{
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool",
	String:  "string",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Parse resolves a config name ("float32", "u16", "double", ...) to a Kind.
func Parse(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))

	switch n {
	case "double":
		return Float64, nil
	case "float":
		return Float32, nil
	case "u8", "byte":
		return Uint8, nil
	case "u16":
		return Uint16, nil
	case "u32":
		return Uint32, nil
	case "u64":
		return Uint64, nil
	case "i8":
		return Int8, nil
	case "i16":
		return Int16, nil
	case "i32":
		return Int32, nil
	case "i64":
		return Int64, nil
	}

	for k, s := range names {
		if s == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("datatype: unknown kind %q", name)
}

// Scalar is the set of Go types that map onto a payload Kind.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64 | ~bool
}

// KindOf returns the Kind matching T, including named types such as
// `type Celsius float32`.
func KindOf[T Scalar]() Kind {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	default:
		return Bool
	}
}
