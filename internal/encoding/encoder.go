// Package encoding implements plus/minus-one source encoding: many shots
// are combined into one super-shot per iteration, exploiting the wave
// operator's linearity in the source term.
package encoding

import "math/rand"

// GenPlusMinus1 draws an encoding vector of +1/-1 entries for ns shots.
func GenPlusMinus1(rng *rand.Rand, ns int) []int {
	codes := make([]int, ns)
	for i := range codes {
		codes[i] = 1
		if rng.Intn(2) == 0 {
			codes[i] = -1
		}
	}
	return codes
}

// Encoder applies a fixed encoding vector to sources and observed data.
type Encoder struct {
	codes []int
}

// NewEncoder creates an encoder for the given +1/-1 vector.
func NewEncoder(codes []int) *Encoder {
	return &Encoder{codes: codes}
}

// EncodeSource spreads a shared wavelet across the encoded sources:
// encsrc[it*ns+is] = e[is] * wavelet[it].
func (e *Encoder) EncodeSource(wavelet []float64) []float64 {
	ns := len(e.codes)
	nt := len(wavelet)
	encsrc := make([]float64, nt*ns)
	for it := 0; it < nt; it++ {
		for is := 0; is < ns; is++ {
			encsrc[it*ns+is] = float64(e.codes[is]) * wavelet[it]
		}
	}
	return encsrc
}

// EncodeObsData stacks the observed gathers dobs (ns*nt*ng, shot slowest)
// into super-shot data: encobs[it*ng+ig] = sum_is e[is]*dobs[is][it][ig].
func (e *Encoder) EncodeObsData(dobs []float64, nt, ng int) []float64 {
	ns := len(e.codes)
	encobs := make([]float64, nt*ng)
	for is := 0; is < ns; is++ {
		w := float64(e.codes[is])
		shot := dobs[is*nt*ng : (is+1)*nt*ng]
		for i, v := range shot {
			encobs[i] += w * v
		}
	}
	return encobs
}
