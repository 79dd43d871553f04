package dtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromGenericsType(t *testing.T) {
	require.Equal(t, Int32, FromGenericsType[int32]())
	require.Equal(t, Uint16, FromGenericsType[uint16]())
	require.Equal(t, Float16, FromGenericsType[float16.Float16]())
	require.Equal(t, Float64, FromGenericsType[float64]())
	require.Equal(t, Invalid, FromAny("not a number"))
}

func TestSize(t *testing.T) {
	require.Equal(t, 1, Int8.Size())
	require.Equal(t, 2, Float16.Size())
	require.Equal(t, 4, Float32.Size())
	require.Equal(t, 8, Uint64.Size())
	require.Equal(t, 0, Invalid.Size())
	require.True(t, Float16.IsFloat())
	require.False(t, Int64.IsFloat())
}

func TestMapOfNames(t *testing.T) {
	require.Equal(t, Float16, MapOfNames["Float16"])
	require.Equal(t, Float16, MapOfNames["float16"])
	require.Equal(t, Float16, MapOfNames["F16"])
	require.Equal(t, Float16, MapOfNames["f16"])
	require.Equal(t, Int32, MapOfNames["int"])
	require.Equal(t, Float64, MapOfNames["DOUBLE"])
	_, found := MapOfNames["Invalid"]
	require.False(t, found)
}

func TestAsBytes(t *testing.T) {
	values := []int32{1, 2, 3}
	raw := AsBytes(values)
	require.Len(t, raw, 12)
	raw[0] = 7 // Shares memory.
	require.Equal(t, int32(7), values[0])
	require.Nil(t, AsBytes([]float32{}))

	halves := []float16.Float16{float16.Fromfloat32(1.5)}
	require.Len(t, AsBytes(halves), 2)
}
