package sdram

import (
	"fmt"
	"io"
	"strings"

	"github.com/hdlsim/sdrsim/hooking"
)

// A Tracer is a hook that writes a human-readable line for every command,
// data beat, and protocol violation of the model it is attached to.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a Tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Func writes the trace line for one hook event.
func (t *Tracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosCommand:
		t.traceCommand(ctx.Item.(CommandInfo))
	case HookPosViolation:
		t.traceViolation(ctx.Item.(Violation))
	case HookPosBeat:
		t.traceBeat(ctx, ctx.Item.(DataBeat))
	}
}

func (t *Tracer) traceCommand(info CommandInfo) {
	switch info.Cmd {
	case CmdLoadModeRegister:
		fmt.Fprintf(t.w,
			"%12d ps  %-18s cas=%d read-burst=%d write-burst=%d interleaved=%v\n",
			info.TS, info.Cmd, info.Mode.CASLatency,
			info.Mode.BurstLenRead, info.Mode.BurstLenWrite,
			info.Mode.Interleaved)
	case CmdRefresh:
		fmt.Fprintf(t.w, "%12d ps  %-18s\n", info.TS, info.Cmd)
	case CmdPrecharge:
		if info.AllBanks {
			fmt.Fprintf(t.w, "%12d ps  %-18s all banks\n", info.TS, info.Cmd)
		} else {
			fmt.Fprintf(t.w, "%12d ps  %-18s bank %d\n",
				info.TS, info.Cmd, info.Bank)
		}
	case CmdActivate:
		fmt.Fprintf(t.w, "%12d ps  %-18s bank %d row 0x%03X\n",
			info.TS, info.Cmd, info.Bank, info.Row)
	case CmdWrite, CmdRead:
		ap := ""
		if info.AutoPrecharge {
			ap = " auto-precharge"
		}
		fmt.Fprintf(t.w, "%12d ps  %-18s bank %d col 0x%03X%s\n",
			info.TS, info.Cmd, info.Bank, info.Col, ap)
	case CmdBurstStop:
		fmt.Fprintf(t.w, "%12d ps  %-18s bank %d\n",
			info.TS, info.Cmd, info.Bank)
	}
}

func (t *Tracer) traceViolation(v Violation) {
	fmt.Fprintf(t.w, "%12d ps  ERROR %s bank %d: %s\n",
		v.TS, v.Cmd, v.Bank, v.Reason)
}

func (t *Tracer) traceBeat(ctx hooking.HookCtx, beat DataBeat) {
	width := 64
	if chip, ok := ctx.Domain.(interface{ BusWidth() int }); ok {
		width = chip.BusWidth()
	}

	dir := "read "
	if beat.Write {
		dir = "write"
	}

	fmt.Fprintf(t.w, "%12d ps  %s bank %d addr 0x%08X data %s\n",
		beat.TS, dir, beat.Bank, beat.Addr,
		formatLanes(beat.Data, beat.DQM, width/8))
}

// formatLanes renders a data unit as hex, most significant lane first, with
// masked byte lanes shown as XX.
func formatLanes(data uint64, dqm uint8, lanes int) string {
	var sb strings.Builder
	for lane := lanes - 1; lane >= 0; lane-- {
		if dqm>>lane&1 == 1 {
			sb.WriteString("XX")
		} else {
			fmt.Fprintf(&sb, "%02X", byte(data>>(8*lane)))
		}
	}

	return sb.String()
}
