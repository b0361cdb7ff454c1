package binning

import "testing"

func TestBinSmallFeatureIsInSmallestBin(t *testing.T) {
	// A short feature should land in one of the smallest bins (>= 4681).
	b := Bin(1000, 1010)
	if b < 4681 {
		t.Errorf("expected a small-bin assignment, got %d", b)
	}
}

func TestBinLargeFeatureIsInLargeBin(t *testing.T) {
	// A feature spanning a huge range should fall back to a coarse bin.
	b := Bin(1, 600_000_000)
	if b > 8 {
		t.Errorf("expected a coarse top-level bin, got %d", b)
	}
}

func TestBinIsDeterministic(t *testing.T) {
	a := Bin(7529, 9484)
	b := Bin(7529, 9484)
	if a != b {
		t.Errorf("Bin is not deterministic: %d != %d", a, b)
	}
}
