package sdram

// A Command is one of the operations an SDRAM controller can issue. The code
// is the concatenation of the RAS#, CAS#, and WE# strobes sampled while
// chip-select is asserted.
type Command uint8

const (
	// CmdLoadModeRegister programs CAS latency, burst length, and burst
	// type from the address bus.
	CmdLoadModeRegister Command = iota

	// CmdRefresh performs an auto refresh. All banks must be precharged.
	CmdRefresh

	// CmdPrecharge closes the open row of one bank, or of all banks when
	// address bit 10 is set.
	CmdPrecharge

	// CmdActivate opens a row in a bank.
	CmdActivate

	// CmdWrite starts a write burst to the addressed column.
	CmdWrite

	// CmdRead starts a read burst from the addressed column, subject to CAS
	// latency.
	CmdRead

	// CmdBurstStop terminates the burst in progress.
	CmdBurstStop

	// CmdNOP does nothing.
	CmdNOP
)

func (c Command) String() string {
	switch c {
	case CmdLoadModeRegister:
		return "LMR"
	case CmdRefresh:
		return "REF"
	case CmdPrecharge:
		return "PRE"
	case CmdActivate:
		return "ACT"
	case CmdWrite:
		return "WR"
	case CmdRead:
		return "RD"
	case CmdBurstStop:
		return "BST"
	default:
		return "NOP"
	}
}

// Pins is the signal state the controller drives on one clock sample. The
// CSn, RASn, CASn, and WEn strobes are active low. Addr bit 10 doubles as
// the auto-precharge flag on READ/WRITE and the all-banks flag on PRECHARGE.
type Pins struct {
	CKE  bool
	Clk  bool
	CSn  bool
	RASn bool
	CASn bool
	WEn  bool
	BA   uint8
	Addr uint16
	DQM  uint8
	DQ   uint64
}

// MakePins returns a pin state that encodes the given command, with
// chip-select asserted and clock-enable high. The caller drives the clock
// and fills in the address, bank, mask, and data wires as needed.
func MakePins(cmd Command) Pins {
	return Pins{
		CKE:  true,
		RASn: cmd&4 != 0,
		CASn: cmd&2 != 0,
		WEn:  cmd&1 != 0,
	}
}

func (p Pins) command() Command {
	cmd := Command(0)
	if p.RASn {
		cmd |= 4
	}
	if p.CASn {
		cmd |= 2
	}
	if p.WEn {
		cmd |= 1
	}

	return cmd
}

// autoPrecharge reports the state of the A[10] wire.
func (p Pins) autoPrecharge() bool {
	return p.Addr&0x400 != 0
}
