package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Run a memory image through a chip configuration.",
	Long: `copy loads a binary image into a chip with the configured ` +
		`geometry and saves it back out. Loading and saving both walk rows ` +
		`in the configured layout order, so copying between two runs with ` +
		`different layouts reorders the image the same way the hardware ` +
		`would see it.`,
	Run: func(cmd *cobra.Command, args []string) {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		addr, _ := cmd.Flags().GetUint64("addr")

		chip := builderFromFlags(cmd).Build("chip")

		loaded, err := chip.LoadImageFile(in, addr)
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", in, err)
			atexit.Exit(1)
		}

		saved, err := chip.SaveImageFile(out, addr, uint64(loaded))
		if err != nil {
			fmt.Printf("Error saving %s: %v\n", out, err)
			atexit.Exit(1)
		}

		fmt.Printf("Copied %d bytes through %d-byte chip\n",
			saved, chip.Capacity())
	},
}

func init() {
	copyCmd.Flags().String("in", "", "input image file")
	copyCmd.Flags().String("out", "", "output image file")
	copyCmd.Flags().Uint64("addr", 0, "row-aligned flat byte address to load at")
	copyCmd.MarkFlagRequired("in")
	copyCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(copyCmd)
}
