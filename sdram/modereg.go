package sdram

// modeRegister holds the decoded LOAD-MODE-REGISTER state. A CAS latency of
// 0 disables pipelined reads; a burst length of 0 disables bursting.
// Unsupported codes are not errors, they deterministically disable the
// corresponding feature.
type modeRegister struct {
	casLatency     int
	burstLenRead   int
	burstMaskRead  uint64
	burstLenWrite  int
	burstMaskWrite uint64
	interleaved    bool
}

// decodeModeRegister decodes the mode value presented on the address bus by
// an LMR command. numCols is the column count used for continuous bursts.
func decodeModeRegister(mode uint16, numCols uint64) modeRegister {
	var m modeRegister

	switch (mode >> 4) & 7 {
	case 2:
		m.casLatency = 2
	case 3:
		m.casLatency = 3
	default:
		m.casLatency = 0
	}

	switch mode & 0xF {
	case 0x0, 0x8:
		m.burstLenRead = 1
		m.burstMaskRead = 0
	case 0x1, 0x9:
		m.burstLenRead = 2
		m.burstMaskRead = 1
	case 0xA:
		m.interleaved = true
		fallthrough
	case 0x2:
		m.burstLenRead = 4
		m.burstMaskRead = 3
	case 0xB:
		m.interleaved = true
		fallthrough
	case 0x3:
		m.burstLenRead = 8
		m.burstMaskRead = 7
	case 0x7:
		// Continuous burst, wraps over the whole row.
		m.burstLenRead = int(numCols)
		m.burstMaskRead = numCols - 1
	default:
		m.burstLenRead = 0
		m.burstMaskRead = 0
	}

	if mode&0x0200 != 0 {
		m.burstLenWrite = 1
		m.burstMaskWrite = 0
	} else {
		m.burstLenWrite = m.burstLenRead
		m.burstMaskWrite = m.burstMaskRead
	}

	return m
}

func (m modeRegister) info() *ModeInfo {
	return &ModeInfo{
		CASLatency:    m.casLatency,
		BurstLenRead:  m.burstLenRead,
		BurstLenWrite: m.burstLenWrite,
		Interleaved:   m.interleaved,
		Continuous:    m.burstLenRead > 8,
	}
}
