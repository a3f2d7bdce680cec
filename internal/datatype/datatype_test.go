// internal/datatype/datatype_test.go
package datatype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidth(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Uint8, 1}, {Int8, 1}, {Bool, 1},
		{Uint16, 2}, {Int16, 2},
		{Uint32, 4}, {Int32, 4}, {Float32, 4},
		{Uint64, 8}, {Int64, 8}, {Float64, 8},
		{String, 0},
		{Kind(4), 0},
		{Kind(32), 0},
		{Kind(255), 0},
	}

	for _, c := range cases {
		require.Equal(t, c.want, Width(c.kind), "kind=%v", c.kind)
		require.Equal(t, c.want > 0, c.kind.Valid(), "kind=%v", c.kind)
	}
}

func TestWidth_NeverExceedsMax(t *testing.T) {
	for k := 0; k < 256; k++ {
		require.LessOrEqual(t, Width(Kind(k)), MaxWidth)
	}
}

func TestDoubleAlias(t *testing.T) {
	require.Equal(t, Float64, Double)
	require.Equal(t, 8, Width(Double))
}

func TestParse(t *testing.T) {
	require := require.New(t)

	k, err := Parse("float32")
	require.NoError(err)
	require.Equal(Float32, k)

	k, err = Parse(" Double ")
	require.NoError(err)
	require.Equal(Float64, k)

	k, err = Parse("u16")
	require.NoError(err)
	require.Equal(Uint16, k)

	k, err = Parse("string")
	require.NoError(err)
	require.False(k.Valid())

	_, err = Parse("complex64")
	require.Error(err)
}

func TestString_Unknown(t *testing.T) {
	require.Equal(t, "kind(99)", Kind(99).String())
	require.Equal(t, "int16", Int16.String())
}

type celsius float32

func TestKindOf(t *testing.T) {
	require := require.New(t)

	require.Equal(Uint8, KindOf[uint8]())
	require.Equal(Uint64, KindOf[uint64]())
	require.Equal(Int16, KindOf[int16]())
	require.Equal(Float32, KindOf[float32]())
	require.Equal(Float64, KindOf[float64]())
	require.Equal(Bool, KindOf[bool]())
	require.Equal(Float32, KindOf[celsius]())
}
