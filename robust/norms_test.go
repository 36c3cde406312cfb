package robust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNorms(t *testing.T) {
	norms := []Norm{LeastSquares{}, HuberT{T: DefaultHuberT}, TukeyBiweight{C: DefaultTukeyC}}
	zs := []float64{-7, -4.685, -2, -1.345, -0.5, 0, 0.5, 1.345, 2, 4.685, 7}

	for _, n := range norms {
		t.Run(n.Name(), func(t *testing.T) {
			assert.Equal(t, 0.0, n.Rho(0))
			assert.Equal(t, 1.0, n.Weight(0))
			for _, z := range zs {
				// Symmetric, nonnegative and bounded weights.
				assert.Equal(t, n.Rho(z), n.Rho(-z))
				assert.Equal(t, n.Weight(z), n.Weight(-z))
				assert.GreaterOrEqual(t, n.Rho(z), 0.0)
				assert.GreaterOrEqual(t, n.Weight(z), 0.0)
				assert.LessOrEqual(t, n.Weight(z), 1.0)

				// w(z)·z is the derivative of ρ.
				if z != 0 {
					const h = 1e-6
					psi := (n.Rho(z+h) - n.Rho(z-h)) / (2 * h)
					assert.InDelta(t, psi, n.Weight(z)*z, 1e-5, "z=%v", z)
				}
			}
		})
	}
}

func TestHuberT(t *testing.T) {
	h := HuberT{T: 2}
	assert.Equal(t, 0.5, h.Rho(1))
	assert.Equal(t, 2.0*3-2, h.Rho(3))
	assert.Equal(t, 1.0, h.Weight(2))
	assert.Equal(t, 0.5, h.Weight(4))
}

func TestTukeyBiweight(t *testing.T) {
	tb := TukeyBiweight{C: 3}
	assert.Equal(t, 0.0, tb.Weight(3.5))
	assert.Equal(t, 1.5, tb.Rho(10))
	assert.InDelta(t, 1.5, tb.Rho(3), 1e-15)
	assert.InDelta(t, math.Pow(1-1.0/9, 2), tb.Weight(1), 1e-15)
}

func TestParseNorm(t *testing.T) {
	tests := []struct {
		name    string
		tuning  float64
		want    Norm
		wantErr bool
	}{
		{name: "ls", want: LeastSquares{}},
		{name: "huber", want: HuberT{T: DefaultHuberT}},
		{name: "Huber", tuning: 2, want: HuberT{T: 2}},
		{name: "", want: HuberT{T: DefaultHuberT}},
		{name: "tukey", want: TukeyBiweight{C: DefaultTukeyC}},
		{name: "biweight", tuning: 6, want: TukeyBiweight{C: 6}},
		{name: "cauchy", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseNorm(tt.name, tt.tuning)
		if tt.wantErr {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMAD(t *testing.T) {
	tests := []struct {
		name string
		r    []float64
		med  float64
	}{
		{name: "odd", r: []float64{-3, 1, 2}, med: 2},
		{name: "even", r: []float64{1, -2, 3, -4}, med: 2.5},
		{name: "about zero not the median", r: []float64{10, 11, 12}, med: 11},
		{name: "zeros", r: []float64{0, 0, 0}, med: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mat.NewVecDense(len(tt.r), append([]float64(nil), tt.r...))
			assert.InDelta(t, tt.med/0.6744897501960817, MAD(r), 1e-15)
			// The input is not reordered.
			assert.Equal(t, tt.r, r.RawVector().Data)
		})
	}
	assert.True(t, math.IsNaN(MAD(&mat.VecDense{})))
}
