package main

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"
)

func TestCloseEnough(t *testing.T) {
	require.True(t, closeEnough(1, 1, 1e-5))
	require.True(t, closeEnough(1e6, 1e6+1, 1e-5))
	require.False(t, closeEnough(1, 1.1, 1e-5))
	require.True(t, closeEnough(0, 1e-7, 1e-5))
}

func TestVerify(t *testing.T) {
	const n = 100
	a := float32(2)
	x, y := make([]float32, n), make([]float32, n)
	for ii := range n {
		x[ii] = math32.Sin(float32(ii))
		y[ii] = a*x[ii] + math32.Cos(float32(ii))
	}
	require.Equal(t, 0, verify(a, x, y, 1e-5))
	y[3] += 1
	y[7] = math32.NaN()
	require.Equal(t, 2, verify(a, x, y, 1e-5))
}
