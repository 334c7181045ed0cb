package dice

// xorshift is a 32-bit xorshift generator.
//
// Invariant: state is never zero.
type xorshift struct {
	state uint32
}

// NewXorshift returns a reproducible Source seeded with seed. A zero seed is replaced by 1.
//
// Postcondition: Two sources built from the same seed produce identical sequences.
func NewXorshift(seed uint32) Source {
	if seed == 0 {
		seed = 1
	}
	return &xorshift{state: seed}
}

func (x *xorshift) next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// Float64 returns the next value in [0, 1).
func (x *xorshift) Float64() float64 {
	return float64(x.next()) / 4294967296.0
}

// Intn returns the next value in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (x *xorshift) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return int(x.Float64() * float64(n))
}
