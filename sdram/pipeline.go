package sdram

// pipeDepth is the number of command pipeline slots. It covers the maximum
// CAS latency of 3 plus the slot that is due on the current edge.
const pipeDepth = 4

// dqmPipeDepth is the number of cycles the byte-lane mask is delayed before
// it gates read output data.
const dqmPipeDepth = 2

// A pipeSlot is one pending entry of the CAS-latency command pipeline. Slot
// 0 is due on the current edge.
type pipeSlot struct {
	cmd      Command
	bank     int
	col      uint64
	allBanks bool
}

type cmdPipeline [pipeDepth]pipeSlot

func (p *cmdPipeline) reset() {
	for i := range p {
		p[i] = pipeSlot{cmd: CmdNOP}
	}
}

// age moves every slot one position toward slot 0 and vacates the last slot.
// The entry that was due on the previous edge falls off.
func (p *cmdPipeline) age() {
	copy(p[:], p[1:])
	p[pipeDepth-1] = pipeSlot{cmd: CmdNOP}
}
