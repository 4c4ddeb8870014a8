package fdm

import "math"

// Ricker samples a Ricker wavelet (second derivative of a Gaussian) with
// dominant frequency fm and peak amplitude amp, delayed by one period so
// the onset is causal.
func Ricker(nt int, fm, dt, amp float64) []float64 {
	wlt := make([]float64, nt)
	for it := 0; it < nt; it++ {
		tmp := math.Pi * fm * (float64(it)*dt - 1.0/fm)
		tmp *= tmp
		wlt[it] = amp * (1.0 - 2.0*tmp) * math.Exp(-tmp)
	}
	return wlt
}
