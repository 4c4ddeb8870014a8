package gradient

// secondDerivFilter replaces a receiver trace by its 5-point second time
// derivative with coefficients (-1/12, 4/3, -5/2, 4/3, -1/12), zeroing the
// first two and last two samples.
func secondDerivFilter(trace []float64) {
	n := len(trace)
	tmp := make([]float64, n)
	copy(tmp, trace)
	for i := 0; i < n; i++ {
		if i <= 1 || i >= n-2 {
			trace[i] = 0
			continue
		}
		trace[i] = -1.0/12.0*tmp[i-2] + 4.0/3.0*tmp[i-1] -
			2.5*tmp[i] + 4.0/3.0*tmp[i+1] - 1.0/12.0*tmp[i+2]
	}
}

// transformResidual turns the residual (nt*ng, receiver fast) into the
// virtual adjoint source by filtering each receiver trace with the second
// time derivative. The filter runs per trace, so the data is transposed to
// (ng*nt) and back.
func transformResidual(vsrc []float64, nt, ng int) {
	trans := make([]float64, nt*ng)
	for it := 0; it < nt; it++ {
		for ig := 0; ig < ng; ig++ {
			trans[ig*nt+it] = vsrc[it*ng+ig]
		}
	}
	for ig := 0; ig < ng; ig++ {
		secondDerivFilter(trans[ig*nt : (ig+1)*nt])
	}
	for ig := 0; ig < ng; ig++ {
		for it := 0; it < nt; it++ {
			vsrc[it*ng+ig] = trans[ig*nt+it]
		}
	}
}
