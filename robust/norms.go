package robust

import (
	"fmt"
	"math"
	"strings"

	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

// Norm is a robust criterion function ρ together with the IRLS weight
// function w(z) = ψ(z)/z.
type Norm interface {
	Rho(z float64) float64
	Weight(z float64) float64
	Name() string
}

// LeastSquares is ρ(z) = z²/2; every observation has weight 1.
type LeastSquares struct{}

func (LeastSquares) Rho(z float64) float64  { return 0.5 * z * z }
func (LeastSquares) Weight(float64) float64 { return 1 }
func (LeastSquares) Name() string           { return "ls" }

// HuberT is Huber's norm: quadratic inside [-T, T], linear outside.
type HuberT struct {
	T float64
}

// DefaultHuberT is 95% efficient at the normal distribution.
const DefaultHuberT = 1.345

func (h HuberT) Rho(z float64) float64 {
	az := math.Abs(z)
	if az <= h.T {
		return 0.5 * z * z
	}
	return h.T*az - 0.5*h.T*h.T
}

func (h HuberT) Weight(z float64) float64 {
	az := math.Abs(z)
	if az <= h.T {
		return 1
	}
	return h.T / az
}

func (HuberT) Name() string { return "huber" }

// TukeyBiweight is Tukey's redescending biweight norm. Observations beyond
// C get zero weight.
type TukeyBiweight struct {
	C float64
}

// DefaultTukeyC is 95% efficient at the normal distribution.
const DefaultTukeyC = 4.685

func (t TukeyBiweight) Rho(z float64) float64 {
	c2 := t.C * t.C
	if math.Abs(z) > t.C {
		return c2 / 6
	}
	u := 1 - (z/t.C)*(z/t.C)
	return c2 / 6 * (1 - u*u*u)
}

func (t TukeyBiweight) Weight(z float64) float64 {
	if math.Abs(z) > t.C {
		return 0
	}
	u := 1 - (z/t.C)*(z/t.C)
	return u * u
}

func (TukeyBiweight) Name() string { return "tukey" }

// ParseNorm returns the norm called name ("ls", "huber", "tukey") with the
// given tuning constant; tuning <= 0 selects the default constant.
func ParseNorm(name string, tuning float64) (Norm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ls", "leastsquares":
		return LeastSquares{}, nil
	case "huber", "hubert", "":
		if tuning <= 0 {
			tuning = DefaultHuberT
		}
		return HuberT{T: tuning}, nil
	case "tukey", "biweight", "tukeybiweight":
		if tuning <= 0 {
			tuning = DefaultTukeyC
		}
		return TukeyBiweight{C: tuning}, nil
	default:
		return nil, scigoErrors.NewValueError("ParseNorm",
			fmt.Sprintf("unknown norm %q, want ls, huber or tukey", name))
	}
}
