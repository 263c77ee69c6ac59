package planar

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestPlanarize(t *testing.T) {
	b := []float64{1, 11, 2, 12, 3, 13, 4, 14}
	planes, err := Planarize(2, b)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2, 3, 4}, {11, 12, 13, 14}}, planes, spew.Sdump(b))

	r, err := Unplanarize(planes)
	require.NoError(t, err)
	require.Equal(t, b, r)
}

func TestPlanarizeInvalid(t *testing.T) {
	_, err := Planarize(2, []float64{1, 2, 3})
	require.Error(t, err)

	_, err = Planarize(0, []float64{1, 2})
	require.Error(t, err)

	_, err = Unplanarize([][]float64{{1, 2}, {1}})
	require.Error(t, err)
}

func TestDownmix(t *testing.T) {
	mono, err := Downmix([]float64{1, 0, 0.5, 0.5, -1, 1}, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, 0.5, 0}, mono)

	in := []float64{0.1, 0.2}
	mono, err = Downmix(in, 1)
	require.NoError(t, err)
	require.Equal(t, in, mono)
	mono[0] = 1
	require.Equal(t, 0.1, in[0])
}
