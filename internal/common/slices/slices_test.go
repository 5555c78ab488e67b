package slices

import (
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErr(t *testing.T) {
	output, err := MapErr([]string{"1", "2.5"}, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, output)

	_, err = MapErr([]string{"1", "x"}, func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		return v, errors.WithStack(err)
	})
	assert.Error(t, err)

	output, err = MapErr[[]string](nil, func(s string) (float64, error) { return 0, nil })
	require.NoError(t, err)
	assert.Nil(t, output)
}

func TestOnes(t *testing.T) {
	assert.Equal(t, []int{1, 1}, Ones[int](2))
	assert.Equal(t, []float64{}, Ones[float64](0))
}

func TestColumn(t *testing.T) {
	s := [][]float64{{1, 2}, {3, 4}, {5}}
	assert.Equal(t, []float64{1, 3, 5}, Column(s, 0))
	assert.Equal(t, []float64{2, 4, 0}, Column(s, 1))
}
