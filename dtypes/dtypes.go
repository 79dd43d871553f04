// Package dtypes defines the host element types that can be transferred to and from device memory, and used as
// kernel arguments.
package dtypes

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/x448/float16"
)

//go:generate go tool enumer -type=DType -output=gen_dtype_enumer.go

// DType is the element type of host buffers.
type DType int

const (
	// Invalid (or not set) dtype.
	Invalid DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64

	// Float16 is the IEEE 754 half-precision float, represented in Go by github.com/x448/float16.
	Float16
	Float32
	Float64
)

// Supported lists the Go types that can be used as host elements.
type Supported interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float16.Float16 | float32 | float64
}

// FromGenericsType returns the DType corresponding to the generic type T.
func FromGenericsType[T Supported]() DType {
	var t T
	return FromAny(t)
}

// FromAny returns the DType of the given value, or Invalid if it's not one of the Supported types.
func FromAny(value any) DType {
	switch value.(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return Invalid
}

var goTypes = map[DType]reflect.Type{
	Int8:    reflect.TypeOf(int8(0)),
	Int16:   reflect.TypeOf(int16(0)),
	Int32:   reflect.TypeOf(int32(0)),
	Int64:   reflect.TypeOf(int64(0)),
	Uint8:   reflect.TypeOf(uint8(0)),
	Uint16:  reflect.TypeOf(uint16(0)),
	Uint32:  reflect.TypeOf(uint32(0)),
	Uint64:  reflect.TypeOf(uint64(0)),
	Float16: reflect.TypeOf(float16.Float16(0)),
	Float32: reflect.TypeOf(float32(0)),
	Float64: reflect.TypeOf(float64(0)),
}

// GoType returns the Go reflect.Type of the dtype, or nil for Invalid.
func (dtype DType) GoType() reflect.Type {
	return goTypes[dtype]
}

// Size returns the number of bytes of one element, or 0 for Invalid.
func (dtype DType) Size() int {
	t := dtype.GoType()
	if t == nil {
		return 0
	}
	return int(t.Size())
}

// IsFloat returns whether dtype is a floating point type.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == Float32 || dtype == Float64
}

// MapOfNames maps the names (and common aliases, in lower and upper case) to the DType.
var MapOfNames = make(map[string]DType)

func init() {
	aliases := map[DType][]string{
		Int8:    {"i8", "s8"},
		Int16:   {"i16", "s16"},
		Int32:   {"i32", "s32", "int"},
		Int64:   {"i64", "s64"},
		Uint8:   {"u8", "byte"},
		Uint16:  {"u16"},
		Uint32:  {"u32"},
		Uint64:  {"u64"},
		Float16: {"f16", "half"},
		Float32: {"f32", "float"},
		Float64: {"f64", "double"},
	}
	for _, dtype := range DTypeValues() {
		if dtype == Invalid {
			continue
		}
		names := append([]string{dtype.String()}, aliases[dtype]...)
		for _, name := range names {
			MapOfNames[name] = dtype
			MapOfNames[strings.ToLower(name)] = dtype
			MapOfNames[strings.ToUpper(name)] = dtype
		}
	}
}

// AsBytes returns a view of the slice as raw bytes, without copying. The view shares the memory with values.
func AsBytes[T Supported](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var t T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), len(values)*int(unsafe.Sizeof(t)))
}
