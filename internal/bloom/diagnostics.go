package bloom

import "github.com/clausecker/pospop"

// FillRatio estimates the fraction of set bits using a positional
// population count over the raw byte array, a cheap diagnostic that no
// query path reads; the run report does not record it.
func (b *Bloom) FillRatio() float64 {
	bits := b.Bits()
	if len(bits) == 0 {
		return 0
	}
	var counts [8]int
	// pospop.Count8 tallies, per bit position 0..7, how many bytes in
	// bits have that bit set; summing gives total set bits without a
	// byte-by-byte popcount loop.
	pospop.Count8(&counts, bits)
	var total int
	for _, c := range counts {
		total += c
	}
	return float64(total) / float64(len(bits)*8)
}
