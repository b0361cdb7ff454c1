// Package binning computes UCSC genomic bin numbers, the coarse
// index key used by the store to accelerate (seqid, start, end)
// overlap lookups without a recursive or R-tree index type.
//
// The scheme mirrors the one used by the UCSC Genome Browser / BAM
// spec: the genome is recursively divided into bins of decreasing
// size (512Mb down to 16kb), and a feature is assigned to the
// smallest bin that fully contains it.
package binning

const (
	binFirstShift = 14
	binNextShift  = 3
)

// offsets, smallest bin size first, matching the canonical 6-level
// UCSC scheme (bins 0, 1-8, 9-72, 73-584, 585-4680, 4681-37448).
var binOffsets = []int64{4096 + 512 + 64 + 8 + 1, 512 + 64 + 8 + 1, 64 + 8 + 1, 8 + 1, 1, 0}

// Bin returns the UCSC bin number for the half-open-turned-inclusive
// 1-based interval [start, end]. Coordinates are treated as 0-based
// half-open internally, matching the reference implementation.
func Bin(start, end int64) int64 {
	beg := start - 1
	e := end
	if e <= beg {
		e = beg + 1
	}
	e--

	shift := binFirstShift
	for _, offset := range binOffsets {
		if (beg >> uint(shift)) == (e >> uint(shift)) {
			return offset + (beg >> uint(shift))
		}
		shift += binNextShift
	}
	return 0
}
