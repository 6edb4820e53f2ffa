package sdram

// interleaveNextCol gives the next column of an interleaved burst, indexed
// by the current column and the number of beats remaining. It reproduces the
// JEDEC interleaved ordering (column = start XOR beat) and is only consulted
// for burst lengths 4 and 8, so both indices stay below 8.
var interleaveNextCol = [8][8]uint64{
	{0, 1, 3, 1, 7, 1, 3, 1},
	{0, 0, 2, 0, 6, 0, 2, 0},
	{0, 3, 1, 3, 5, 3, 1, 3},
	{0, 2, 0, 2, 4, 2, 0, 2},
	{0, 5, 7, 5, 3, 5, 7, 5},
	{0, 4, 6, 4, 2, 4, 6, 4},
	{0, 7, 5, 7, 1, 7, 5, 7},
	{0, 6, 4, 6, 0, 6, 4, 6},
}

// nextBurstCol advances the burst column. Sequential bursts increment and
// wrap under the burst mask; interleaved bursts follow the permutation
// table.
func nextBurstCol(col uint64, remaining int, mask uint64, interleaved bool) uint64 {
	if interleaved {
		return interleaveNextCol[col][remaining]
	}

	return (col + 1) & mask
}

// laneMask maps an 8-bit DQM pattern to a 64-bit value mask with 0x00 in
// every masked byte lane and 0xFF in every enabled one. Lane 0 is the least
// significant byte of the data bus.
var laneMask [256]uint64

func init() {
	for dqm := 0; dqm < 256; dqm++ {
		mask := ^uint64(0)
		for lane := 0; lane < 8; lane++ {
			if dqm>>lane&1 == 1 {
				mask &^= uint64(0xFF) << (8 * lane)
			}
		}
		laneMask[dqm] = mask
	}
}
