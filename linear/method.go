package linear

import (
	"fmt"
	"strings"

	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

// Method selects how MinimalWLS solves for the parameters.
type Method int

const (
	// MethodPinv solves through the Moore-Penrose pseudoinverse of the
	// weighted design. It tolerates rank deficiency and is the slowest.
	MethodPinv Method = iota
	// MethodQR solves the triangular system of a QR factorization. The
	// weighted design must have full column rank.
	MethodQR
	// MethodLstsq solves the minimum-norm least squares problem through an
	// SVD. Its covariance comes from the unregularized normal equations.
	MethodLstsq
)

var methodNames = [...]string{
	MethodPinv:  "pinv",
	MethodQR:    "qr",
	MethodLstsq: "lstsq",
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

func (m Method) valid() bool {
	return m >= MethodPinv && m <= MethodLstsq
}

// ParseMethod parses "pinv", "qr" or "lstsq", ignoring case.
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, scigoErrors.NewValueError("ParseMethod",
		fmt.Sprintf("unknown method %q, want pinv, qr or lstsq", s))
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, scigoErrors.NewValueError("Method.MarshalText", m.String())
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
