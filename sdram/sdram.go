// Package sdram provides a cycle-accurate behavioral model of an SDR SDRAM
// chip. The model is evaluated once per external clock sample; on each
// qualifying rising edge it decodes the command pins, ages the CAS-latency
// command pipeline, and performs at most one data-bus beat.
package sdram

import (
	"github.com/hdlsim/sdrsim/hooking"
	"github.com/hdlsim/sdrsim/memory"
	"github.com/hdlsim/sdrsim/sdram/internal/addrdec"
)

// bankState tracks the protocol state of one bank. The recorded row offset
// survives a precharge; only the active flag is cleared.
type bankState struct {
	active        bool
	precharged    bool
	row           uint64
	autoPrecharge bool
}

// Comp is an SDRAM chip model.
type Comp struct {
	hooking.HookableBase

	name string

	decoder *addrdec.Decoder
	banks   []*memory.Storage
	bank    []bankState
	mode    modeRegister

	rowBits     int
	colBits     int
	bankBits    int
	busLog2     int
	numCols     uint64
	maskCols    uint64
	maskRows    uint64
	interleaved bool

	prevClk bool
	pipe    cmdPipeline
	dqmPipe [dqmPipeDepth]uint8

	// Burst cursor. curRow combines the active row offset with the
	// non-bursting column bits; curCol holds the bursting bits only.
	curBank    int
	curRow     uint64
	curCol     uint64
	burstRead  int
	burstWrite int

	dqOut uint64
}

// Name returns the name of the model instance.
func (c *Comp) Name() string {
	return c.name
}

// Capacity returns the total capacity in bytes.
func (c *Comp) Capacity() uint64 {
	return c.decoder.Capacity()
}

// BusWidth returns the data bus width in bits.
func (c *Comp) BusWidth() int {
	return 8 << c.busLog2
}

// Eval samples the pins once. All state transitions happen inside this call,
// on a rising clock edge while clock-enable is high. The returned value is
// what the model drives on the data bus; it holds the last driven value
// between read beats. ts is a caller-supplied timestamp in picoseconds, used
// for diagnostics only.
func (c *Comp) Eval(ts uint64, pins Pins) uint64 {
	if !pins.CKE {
		c.prevClk = false
		return c.dqOut
	}

	if pins.Clk && !c.prevClk {
		c.edge(ts, pins)
	}
	c.prevClk = pins.Clk

	return c.dqOut
}

func (c *Comp) edge(ts uint64, pins Pins) {
	c.pipe.age()
	c.dqmPipe[0] = c.dqmPipe[1]
	c.dqmPipe[1] = pins.DQM

	if !pins.CSn {
		c.dispatch(ts, pins)
	}

	c.executeDue()
	c.transfer(ts, pins)
}

// dispatch applies the immediate effect of the command on the pins. WRITE
// occupies pipeline slot 0 so it takes effect on this same edge; READ,
// PRECHARGE, and BURST-STOP place their read-path effect at the CAS-latency
// slot.
func (c *Comp) dispatch(ts uint64, pins Pins) {
	switch pins.command() {
	case CmdLoadModeRegister:
		c.loadModeRegister(ts, pins)
	case CmdRefresh:
		c.refresh(ts, pins)
	case CmdPrecharge:
		c.precharge(ts, pins)
	case CmdActivate:
		c.activate(ts, pins)
	case CmdWrite:
		c.write(ts, pins)
	case CmdRead:
		c.read(ts, pins)
	case CmdBurstStop:
		c.burstStop(ts, pins)
	case CmdNOP:
	}
}

func (c *Comp) loadModeRegister(ts uint64, pins Pins) {
	c.mode = decodeModeRegister(pins.Addr, c.numCols)

	c.invokeCommandHook(CommandInfo{
		TS:   ts,
		Cmd:  CmdLoadModeRegister,
		Mode: c.mode.info(),
	})
}

func (c *Comp) refresh(ts uint64, pins Pins) {
	c.invokeCommandHook(CommandInfo{TS: ts, Cmd: CmdRefresh})

	for i := range c.bank {
		if !c.bank[i].precharged {
			c.violate(ts, CmdRefresh, i,
				"all banks must be precharged before auto refresh")
			return
		}
	}
}

func (c *Comp) precharge(ts uint64, pins Pins) {
	ba := int(pins.BA)
	all := pins.autoPrecharge()

	c.invokeCommandHook(CommandInfo{
		TS:       ts,
		Cmd:      CmdPrecharge,
		Bank:     ba,
		AllBanks: all,
	})

	if all {
		for i := range c.bank {
			if c.bank[i].autoPrecharge {
				c.violate(ts, CmdPrecharge, i,
					"cannot precharge all banks while a bank is auto-precharged")
				return
			}
		}

		for i := range c.bank {
			c.bank[i].active = false
			c.bank[i].precharged = true
		}
	} else {
		if c.bank[ba].autoPrecharge {
			c.violate(ts, CmdPrecharge, ba,
				"cannot precharge an auto-precharged bank")
			return
		}

		c.bank[ba].active = false
		c.bank[ba].precharged = true
	}

	// A precharge that hits the bank being written terminates the write
	// burst on this very edge.
	if all || ba == c.curBank {
		c.burstWrite = 0
	}

	// An in-flight read is terminated after the CAS latency.
	if c.mode.casLatency > 0 {
		c.pipe[c.mode.casLatency] = pipeSlot{
			cmd:      CmdPrecharge,
			bank:     ba,
			allBanks: all,
		}
	}
}

func (c *Comp) activate(ts uint64, pins Pins) {
	ba := int(pins.BA)

	c.invokeCommandHook(CommandInfo{
		TS:   ts,
		Cmd:  CmdActivate,
		Bank: ba,
		Row:  uint64(pins.Addr),
	})

	if c.bank[ba].active {
		c.violate(ts, CmdActivate, ba, "bank already active")
		return
	}

	c.bank[ba].active = true
	c.bank[ba].precharged = false
	c.bank[ba].row = (uint64(pins.Addr) << c.colBits) & c.maskRows
}

func (c *Comp) write(ts uint64, pins Pins) {
	ba := int(pins.BA)
	col := uint64(pins.Addr) & c.maskCols

	c.invokeCommandHook(CommandInfo{
		TS:            ts,
		Cmd:           CmdWrite,
		Bank:          ba,
		Col:           col,
		AutoPrecharge: pins.autoPrecharge(),
	})

	if !c.bank[ba].active {
		c.violate(ts, CmdWrite, ba, "bank is not activated for WRITE")
		return
	}

	// A write has no CAS latency; it is due on this same edge.
	c.pipe[0] = pipeSlot{cmd: CmdWrite, bank: ba, col: col}
	c.bank[ba].autoPrecharge = pins.autoPrecharge()
}

func (c *Comp) read(ts uint64, pins Pins) {
	ba := int(pins.BA)
	col := uint64(pins.Addr) & c.maskCols

	c.invokeCommandHook(CommandInfo{
		TS:            ts,
		Cmd:           CmdRead,
		Bank:          ba,
		Col:           col,
		AutoPrecharge: pins.autoPrecharge(),
	})

	if !c.bank[ba].active {
		c.violate(ts, CmdRead, ba, "bank is not activated for READ")
		return
	}

	// CAS latency 0 means pipelined reads are disabled; the read is
	// accepted but never becomes due.
	if c.mode.casLatency > 0 {
		c.pipe[c.mode.casLatency] = pipeSlot{cmd: CmdRead, bank: ba, col: col}
	}
	c.bank[ba].autoPrecharge = pins.autoPrecharge()
}

func (c *Comp) burstStop(ts uint64, pins Pins) {
	ba := int(pins.BA)

	c.invokeCommandHook(CommandInfo{TS: ts, Cmd: CmdBurstStop, Bank: ba})

	if c.bank[ba].autoPrecharge {
		c.violate(ts, CmdBurstStop, ba,
			"cannot apply a burst stop to an auto-precharged bank")
		return
	}

	c.burstWrite = 0

	if c.mode.casLatency > 0 {
		c.pipe[c.mode.casLatency] = pipeSlot{cmd: CmdBurstStop}
	}
}

// executeDue applies the pipeline entry that has aged to slot 0. A due WRITE
// or READ loads the burst cursor; a due PRECHARGE or BURST-STOP kills the
// read burst.
func (c *Comp) executeDue() {
	due := c.pipe[0]

	switch due.cmd {
	case CmdPrecharge:
		if due.allBanks || due.bank == c.curBank {
			c.burstRead = 0
		}
	case CmdWrite:
		c.curBank = due.bank
		c.curRow = c.bank[due.bank].row + (due.col &^ c.mode.burstMaskWrite)
		c.curCol = due.col & c.mode.burstMaskWrite
		c.burstRead = 0
		c.burstWrite = c.mode.burstLenWrite
	case CmdRead:
		c.curBank = due.bank
		c.curRow = c.bank[due.bank].row + (due.col &^ c.mode.burstMaskRead)
		c.curCol = due.col & c.mode.burstMaskRead
		c.burstRead = c.mode.burstLenRead
		c.burstWrite = 0
	case CmdBurstStop:
		c.burstRead = 0
	}
}

// transfer performs at most one data-bus beat. The dispatcher guarantees the
// two burst counters are never both nonzero.
func (c *Comp) transfer(ts uint64, pins Pins) {
	switch {
	case c.burstWrite > 0:
		c.writeBeat(ts, pins)
	case c.burstRead > 0:
		c.readBeat(ts)
	}
}

func (c *Comp) writeBeat(ts uint64, pins Pins) {
	idx := c.curRow + c.curCol

	err := c.decoder.WriteUnit(c.curBank, idx, pins.DQ, laneMask[pins.DQM])
	if err != nil {
		panic(err)
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosBeat,
		Item: DataBeat{
			TS:    ts,
			Write: true,
			Addr:  c.beatAddr(),
			Bank:  c.curBank,
			Data:  pins.DQ,
			DQM:   pins.DQM,
		},
	})

	c.burstWrite--
	if c.burstWrite > 0 {
		c.curCol = nextBurstCol(
			c.curCol, c.burstWrite, c.mode.burstMaskWrite, c.mode.interleaved)
	} else {
		c.completeBurst()
	}
}

func (c *Comp) readBeat(ts uint64) {
	idx := c.curRow + c.curCol

	raw, err := c.decoder.ReadUnit(c.curBank, idx)
	if err != nil {
		panic(err)
	}

	// Read data is gated by the two-cycle-delayed byte-lane mask so the
	// mask lines up with the data it applies to.
	c.dqOut = raw & laneMask[c.dqmPipe[0]]

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosBeat,
		Item: DataBeat{
			TS:   ts,
			Addr: c.beatAddr(),
			Bank: c.curBank,
			Data: c.dqOut,
			DQM:  c.dqmPipe[0],
		},
	})

	c.burstRead--
	if c.burstRead > 0 {
		c.curCol = nextBurstCol(
			c.curCol, c.burstRead, c.mode.burstMaskRead, c.mode.interleaved)
	} else {
		c.completeBurst()
	}
}

// completeBurst applies a pending auto-precharge once the burst has
// delivered its last beat.
func (c *Comp) completeBurst() {
	if c.bank[c.curBank].autoPrecharge {
		c.bank[c.curBank].autoPrecharge = false
		c.bank[c.curBank].active = false
		c.bank[c.curBank].precharged = true
	}
}

// beatAddr returns the flat byte address of the unit the burst cursor points
// at.
func (c *Comp) beatAddr() uint64 {
	element := c.curRow + c.curCol
	rowBase := element &^ c.maskCols
	col := element & c.maskCols

	var unit uint64
	if c.interleaved {
		unit = rowBase<<c.bankBits + uint64(c.curBank)<<c.colBits + col
	} else {
		unit = uint64(c.curBank)<<(c.rowBits+c.colBits) + rowBase + col
	}

	return unit << c.busLog2
}

func (c *Comp) invokeCommandHook(info CommandInfo) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosCommand,
		Item:   info,
	})
}

func (c *Comp) violate(ts uint64, cmd Command, bank int, reason string) {
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosViolation,
		Item: Violation{
			TS:     ts,
			Cmd:    cmd,
			Bank:   bank,
			Reason: reason,
		},
	})
}

// ReadByte reads one byte at a flat byte address, bypassing the protocol
// state machine.
func (c *Comp) ReadByte(addr uint64) (byte, error) {
	return c.decoder.ReadByte(addr)
}

// ReadWord reads a 16-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) ReadWord(addr uint64) (uint16, error) {
	return c.decoder.ReadWord(addr)
}

// ReadLong reads a 32-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) ReadLong(addr uint64) (uint32, error) {
	return c.decoder.ReadLong(addr)
}

// ReadQuad reads a 64-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) ReadQuad(addr uint64) (uint64, error) {
	return c.decoder.ReadQuad(addr)
}

// WriteByte writes one byte at a flat byte address, bypassing the protocol
// state machine.
func (c *Comp) WriteByte(addr uint64, data byte) error {
	return c.decoder.WriteByte(addr, data)
}

// WriteWord writes a 16-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) WriteWord(addr uint64, data uint16) error {
	return c.decoder.WriteWord(addr, data)
}

// WriteLong writes a 32-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) WriteLong(addr uint64, data uint32) error {
	return c.decoder.WriteLong(addr, data)
}

// WriteQuad writes a 64-bit value at a flat byte address, bypassing the
// protocol state machine.
func (c *Comp) WriteQuad(addr uint64, data uint64) error {
	return c.decoder.WriteQuad(addr, data)
}
