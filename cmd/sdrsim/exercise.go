package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hdlsim/sdrsim/datarecording"
	"github.com/hdlsim/sdrsim/hooking"
	"github.com/hdlsim/sdrsim/sdram"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Drive a canonical command sequence through a chip model.",
	Long: `exercise initializes a chip (precharge all, refresh, load mode ` +
		`register), writes a burst, and reads it back, tracing every ` +
		`command and data beat. Set SDRSIM_TRACE to redirect the trace to ` +
		`a file and SDRSIM_DB to also record events into a SQLite database.`,
	Run: func(cmd *cobra.Command, args []string) {
		runExercise(cmd)
	},
}

func init() {
	exerciseCmd.Flags().Int("cas", 2, "CAS latency (2 or 3)")
	exerciseCmd.Flags().Int("burst", 4, "burst length (1, 2, 4, or 8)")

	rootCmd.AddCommand(exerciseCmd)
}

func runExercise(cmd *cobra.Command) {
	hooks := []hooking.Hook{sdram.NewTracer(traceWriter())}

	if db := os.Getenv("SDRSIM_DB"); db != "" {
		recorder := datarecording.New(db)
		atexit.Register(func() { recorder.Close() })
		hooks = append(hooks, sdram.NewAccessRecorder(recorder))
	}

	chip := builderFromFlags(cmd).
		WithAdditionalHooks(hooks...).
		Build("chip")

	cas, _ := cmd.Flags().GetInt("cas")
	burst, _ := cmd.Flags().GetInt("burst")

	driveSequence(chip, cas, burst)
}

func traceWriter() *os.File {
	path := os.Getenv("SDRSIM_TRACE")
	if path == "" || path == "-" {
		return os.Stdout
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Error creating trace file: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Register(func() { f.Close() })

	return f
}

// driveSequence runs the standard initialization sequence, then one write
// burst and one read burst on bank 0, and verifies the read data. It exits
// nonzero on a miscompare.
func driveSequence(chip *sdram.Comp, cas, burst int) {
	if cas != 2 && cas != 3 {
		fmt.Printf("Error: CAS latency %d is not supported\n", cas)
		atexit.Exit(1)
	}

	d := &driver{chip: chip, period: 10000}

	pre := sdram.MakePins(sdram.CmdPrecharge)
	pre.Addr = 0x400
	d.cycle(pre)

	d.cycle(sdram.MakePins(sdram.CmdRefresh))

	lmr := sdram.MakePins(sdram.CmdLoadModeRegister)
	lmr.Addr = uint16(cas<<4) | burstCode(burst)
	d.cycle(lmr)

	act := sdram.MakePins(sdram.CmdActivate)
	act.Addr = 0x001
	d.cycle(act)

	busMask := ^uint64(0) >> (64 - chip.BusWidth())

	want := make([]uint64, burst)
	wr := sdram.MakePins(sdram.CmdWrite)
	for i := 0; i < burst; i++ {
		wr.DQ = 0x1111111111111111 * uint64(i+1)
		want[i] = wr.DQ & busMask
		d.cycle(wr)
		wr = sdram.MakePins(sdram.CmdNOP)
	}

	d.cycle(sdram.MakePins(sdram.CmdRead))

	var got []uint64
	for i := 1; i <= burst+cas; i++ {
		out := d.cycle(sdram.MakePins(sdram.CmdNOP))
		if i >= cas && len(got) < burst {
			got = append(got, out)
		}
	}

	pre = sdram.MakePins(sdram.CmdPrecharge)
	pre.Addr = 0x400
	d.cycle(pre)

	for i := range want {
		if got[i] != want[i] {
			fmt.Printf("Error: beat %d read back %#x, want %#x\n",
				i, got[i], want[i])
			atexit.Exit(1)
		}
	}
}

func burstCode(burst int) uint16 {
	switch burst {
	case 1:
		return 0x0
	case 2:
		return 0x1
	case 4:
		return 0x2
	case 8:
		return 0x3
	default:
		fmt.Printf("Error: burst length %d is not supported\n", burst)
		atexit.Exit(1)
		return 0
	}
}

// driver steps a chip one full clock cycle at a time.
type driver struct {
	chip   *sdram.Comp
	ts     uint64
	period uint64
}

func (d *driver) cycle(pins sdram.Pins) uint64 {
	pins.Clk = false
	d.chip.Eval(d.ts, pins)
	d.ts += d.period / 2

	pins.Clk = true
	out := d.chip.Eval(d.ts, pins)
	d.ts += d.period / 2

	return out
}
