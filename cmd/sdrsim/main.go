// The sdrsim command inspects and exercises SDR SDRAM chip models from the
// command line.
package main

import "github.com/tebeka/atexit"

func main() {
	Execute()
	atexit.Exit(0)
}
