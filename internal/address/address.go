// Package address implements track meter addresses: linear positions along
// a railway alignment expressed as a kilometer number plus meters.
package address

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTolerance is the distance in meters under which two addresses on
// the same kilometer are treated as the same position.
const DefaultTolerance = 1.0

// ErrMalformed is returned when an address string cannot be parsed.
var ErrMalformed = errors.New("malformed address")

// KmNumber identifies a kilometer post. Extension distinguishes inserted
// kilometers such as 0012A.
type KmNumber struct {
	Number    int
	Extension string
}

// Compare orders kilometers by number, then extension.
func (k KmNumber) Compare(o KmNumber) int {
	switch {
	case k.Number < o.Number:
		return -1
	case k.Number > o.Number:
		return 1
	}
	return strings.Compare(k.Extension, o.Extension)
}

func (k KmNumber) String() string {
	return fmt.Sprintf("%04d%s", k.Number, k.Extension)
}

// Address is a track meter.
type Address struct {
	Km     KmNumber
	Meters float64
}

// New returns the address at meters past kilometer km.
func New(km int, meters float64) Address {
	return Address{Km: KmNumber{Number: km}, Meters: meters}
}

// Parse reads the text form KKKK[E]+MMMM.mmm, e.g. 0002+0123.123.
func Parse(s string) (Address, error) {
	kmPart, mPart, ok := strings.Cut(strings.TrimSpace(s), "+")
	if !ok || kmPart == "" || mPart == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	digits := 0
	for digits < len(kmPart) && kmPart[digits] >= '0' && kmPart[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return Address{}, fmt.Errorf("%w: %q: missing kilometer number", ErrMalformed, s)
	}
	number, err := strconv.Atoi(kmPart[:digits])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrMalformed, s, err)
	}
	ext := kmPart[digits:]
	for _, r := range ext {
		if r < 'A' || r > 'Z' {
			return Address{}, fmt.Errorf("%w: %q: invalid kilometer extension", ErrMalformed, s)
		}
	}

	meters, err := strconv.ParseFloat(mPart, 64)
	if err != nil || meters < 0 || math.IsInf(meters, 0) || math.IsNaN(meters) {
		return Address{}, fmt.Errorf("%w: %q: invalid meters", ErrMalformed, s)
	}

	return Address{Km: KmNumber{Number: number, Extension: ext}, Meters: meters}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	m := strconv.FormatFloat(a.Meters, 'f', -1, 64)
	whole, frac, hasFrac := strings.Cut(m, ".")
	if len(whole) < 4 {
		whole = strings.Repeat("0", 4-len(whole)) + whole
	}
	if hasFrac {
		return a.Km.String() + "+" + whole + "." + frac
	}
	return a.Km.String() + "+" + whole
}

// Compare returns -1, 0 or 1 depending on whether a is before, at or after b.
func (a Address) Compare(b Address) int {
	if c := a.Km.Compare(b.Km); c != 0 {
		return c
	}
	switch {
	case a.Meters < b.Meters:
		return -1
	case a.Meters > b.Meters:
		return 1
	}
	return 0
}

func (a Address) Before(b Address) bool { return a.Compare(b) < 0 }
func (a Address) After(b Address) bool  { return a.Compare(b) > 0 }
func (a Address) Equal(b Address) bool  { return a.Compare(b) == 0 }

// Near reports whether a and b lie on the same kilometer no more than tol
// meters apart.
func Near(a, b Address, tol float64) bool {
	return a.Km.Compare(b.Km) == 0 && math.Abs(a.Meters-b.Meters) <= tol
}

// Distance returns b - a in meters when both are on the same kilometer.
func Distance(a, b Address) (float64, bool) {
	if a.Km.Compare(b.Km) != 0 {
		return 0, false
	}
	return b.Meters - a.Meters, true
}

// Min returns the earlier of a and b.
func Min(a, b Address) Address {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Address) Address {
	if b.After(a) {
		return b
	}
	return a
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
