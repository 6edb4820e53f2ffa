package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report the geometry and capacity of a chip configuration.",
	Run: func(cmd *cobra.Command, args []string) {
		chip := builderFromFlags(cmd).Build("chip")

		rowBits, _ := cmd.Flags().GetInt("row-bits")
		colBits, _ := cmd.Flags().GetInt("col-bits")
		banks, _ := cmd.Flags().GetInt("banks")
		interleaved, _ := cmd.Flags().GetBool("interleaved")
		bigEndian, _ := cmd.Flags().GetBool("big-endian")

		layout := "contiguous"
		if interleaved {
			layout = "interleaved"
		}

		endian := "little"
		if bigEndian {
			endian = "big"
		}

		fmt.Printf("banks:      %d\n", banks)
		fmt.Printf("rows:       %d\n", 1<<rowBits)
		fmt.Printf("columns:    %d\n", 1<<colBits)
		fmt.Printf("bus width:  %d bits\n", chip.BusWidth())
		fmt.Printf("layout:     %s\n", layout)
		fmt.Printf("endianness: %s\n", endian)
		fmt.Printf("capacity:   %d bytes\n", chip.Capacity())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
