package sdram

import (
	"github.com/hdlsim/sdrsim/datarecording"
	"github.com/hdlsim/sdrsim/hooking"
)

// CommandRecord is one row of the sdram_commands table.
type CommandRecord struct {
	TS            uint64
	Chip          string
	Cmd           string
	Bank          int
	Row           uint64
	Col           uint64
	AutoPrecharge bool
	AllBanks      bool
}

// BeatRecord is one row of the sdram_beats table.
type BeatRecord struct {
	TS    uint64
	Chip  string
	Write bool
	Addr  uint64
	Bank  int
	Data  uint64
	DQM   uint8
}

// ViolationRecord is one row of the sdram_violations table.
type ViolationRecord struct {
	TS     uint64
	Chip   string
	Cmd    string
	Bank   int
	Reason string
}

// An AccessRecorder is a hook that stores every command, data beat, and
// protocol violation in a recording database. One recorder can serve several
// chips; rows carry the chip name.
type AccessRecorder struct {
	recorder datarecording.DataRecorder
}

// NewAccessRecorder creates an AccessRecorder that writes through the given
// DataRecorder and creates the tables it needs.
func NewAccessRecorder(recorder datarecording.DataRecorder) *AccessRecorder {
	recorder.CreateTable("sdram_commands", CommandRecord{})
	recorder.CreateTable("sdram_beats", BeatRecord{})
	recorder.CreateTable("sdram_violations", ViolationRecord{})

	return &AccessRecorder{recorder: recorder}
}

// Func stores the record for one hook event.
func (r *AccessRecorder) Func(ctx hooking.HookCtx) {
	chip := ""
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		chip = named.Name()
	}

	switch ctx.Pos {
	case HookPosCommand:
		info := ctx.Item.(CommandInfo)
		r.recorder.InsertData("sdram_commands", CommandRecord{
			TS:            info.TS,
			Chip:          chip,
			Cmd:           info.Cmd.String(),
			Bank:          info.Bank,
			Row:           info.Row,
			Col:           info.Col,
			AutoPrecharge: info.AutoPrecharge,
			AllBanks:      info.AllBanks,
		})
	case HookPosBeat:
		beat := ctx.Item.(DataBeat)
		r.recorder.InsertData("sdram_beats", BeatRecord{
			TS:    beat.TS,
			Chip:  chip,
			Write: beat.Write,
			Addr:  beat.Addr,
			Bank:  beat.Bank,
			Data:  beat.Data,
			DQM:   beat.DQM,
		})
	case HookPosViolation:
		v := ctx.Item.(Violation)
		r.recorder.InsertData("sdram_violations", ViolationRecord{
			TS:     v.TS,
			Chip:   chip,
			Cmd:    v.Cmd.String(),
			Bank:   v.Bank,
			Reason: v.Reason,
		})
	}
}
