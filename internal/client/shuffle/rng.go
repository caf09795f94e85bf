package shuffle

// Source yields floats in [0,1).
type Source interface {
	Float64() float64
}

// RNG is the mulberry32 generator.
type RNG struct {
	state uint32
}

func NewRNG(seed uint32) *RNG {
	return &RNG{state: seed}
}

func (r *RNG) Uint32() uint32 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns the next value in [0,1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint32()) / 4294967296
}
