package encoding

import (
	"math/rand"
	"testing"
)

func TestGenPlusMinus1(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	codes := GenPlusMinus1(rng, 64)
	if len(codes) != 64 {
		t.Fatalf("expected 64 codes, got %d", len(codes))
	}
	for i, c := range codes {
		if c != 1 && c != -1 {
			t.Fatalf("code %d is %d, want +1 or -1", i, c)
		}
	}

	// The fixed seed keeps runs reproducible.
	again := GenPlusMinus1(rand.New(rand.NewSource(10)), 64)
	for i := range codes {
		if codes[i] != again[i] {
			t.Fatal("same seed produced different codes")
		}
	}
}

func TestEncodeSource(t *testing.T) {
	enc := NewEncoder([]int{1, -1, 1})
	wavelet := []float64{2, 5, -3}
	encsrc := enc.EncodeSource(wavelet)

	if len(encsrc) != 9 {
		t.Fatalf("expected nt*ns = 9 samples, got %d", len(encsrc))
	}
	for it, w := range wavelet {
		want := []float64{w, -w, w}
		for is := 0; is < 3; is++ {
			if encsrc[it*3+is] != want[is] {
				t.Errorf("encsrc[%d][%d] = %v, want %v", it, is, encsrc[it*3+is], want[is])
			}
		}
	}
}

func TestEncodeObsData(t *testing.T) {
	const (
		ns = 2
		nt = 3
		ng = 2
	)
	dobs := []float64{
		// shot 0
		1, 2,
		3, 4,
		5, 6,
		// shot 1
		10, 20,
		30, 40,
		50, 60,
	}

	enc := NewEncoder([]int{1, -1})
	encobs := enc.EncodeObsData(dobs, nt, ng)

	want := []float64{-9, -18, -27, -36, -45, -54}
	for i := range want {
		if encobs[i] != want[i] {
			t.Errorf("encobs[%d] = %v, want %v", i, encobs[i], want[i])
		}
	}
}
