package sdram

import "github.com/hdlsim/sdrsim/hooking"

// Hook positions where the model reports events. The model performs no I/O
// itself; tracers and recorders attach as hooks.
var (
	// HookPosCommand is triggered for every decoded non-NOP command. The
	// item is a CommandInfo.
	HookPosCommand = &hooking.HookPos{Name: "Command"}

	// HookPosViolation is triggered when a command breaks a protocol rule
	// and is ignored. The item is a Violation.
	HookPosViolation = &hooking.HookPos{Name: "Violation"}

	// HookPosBeat is triggered for every data transfer beat of a read or
	// write burst. The item is a DataBeat.
	HookPosBeat = &hooking.HookPos{Name: "DataBeat"}
)

// CommandInfo describes one decoded command. TS is the caller-supplied
// timestamp in picoseconds. Mode is only set for LOAD-MODE-REGISTER.
type CommandInfo struct {
	TS            uint64
	Cmd           Command
	Bank          int
	Row           uint64
	Col           uint64
	AutoPrecharge bool
	AllBanks      bool
	Mode          *ModeInfo
}

// ModeInfo is the mode-register content decoded from an LMR command.
// BurstLenRead or CASLatency being 0 means the corresponding feature is
// disabled.
type ModeInfo struct {
	CASLatency    int
	BurstLenRead  int
	BurstLenWrite int
	Interleaved   bool
	Continuous    bool
}

// Violation describes a command that was ignored because it broke a protocol
// rule.
type Violation struct {
	TS     uint64
	Cmd    Command
	Bank   int
	Reason string
}

// DataBeat describes one beat of a read or write burst. Addr is the flat
// byte address of the unit being transferred.
type DataBeat struct {
	TS    uint64
	Write bool
	Addr  uint64
	Bank  int
	Data  uint64
	DQM   uint8
}
