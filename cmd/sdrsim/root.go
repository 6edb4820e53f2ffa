package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hdlsim/sdrsim/sdram"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "sdrsim",
	Short: "sdrsim inspects and exercises SDR SDRAM chip models from the " +
		"command line.",
	Long: `sdrsim inspects and exercises SDR SDRAM chip models from the ` +
		`command line. It can report chip geometry, copy memory images ` +
		`between layouts, and drive command sequences through the protocol ` +
		`state machine. Defaults can be placed in a .env file; see the ` +
		`SDRSIM_TRACE and SDRSIM_DB variables.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// Missing .env is fine, the variables are optional.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int("row-bits", 12, "number of row address bits per bank")
	pf.Int("col-bits", 8, "number of column address bits per row")
	pf.Int("bus-width", 16, "data bus width in bits (8, 16, 32, or 64)")
	pf.Int("banks", 4, "number of banks (4 or 8)")
	pf.Bool("interleaved", false, "use the interleaved bank layout")
	pf.Bool("big-endian", false, "store multi-byte units big endian")
}

func builderFromFlags(cmd *cobra.Command) sdram.Builder {
	rowBits, _ := cmd.Flags().GetInt("row-bits")
	colBits, _ := cmd.Flags().GetInt("col-bits")
	busWidth, _ := cmd.Flags().GetInt("bus-width")
	banks, _ := cmd.Flags().GetInt("banks")
	interleaved, _ := cmd.Flags().GetBool("interleaved")
	bigEndian, _ := cmd.Flags().GetBool("big-endian")

	b := sdram.MakeBuilder().
		WithRowBits(rowBits).
		WithColBits(colBits).
		WithBusWidth(busWidth).
		WithNumBanks(banks)

	if interleaved {
		b = b.WithInterleavedBanks()
	}

	if bigEndian {
		b = b.WithBigEndian()
	}

	return b
}
