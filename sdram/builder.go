package sdram

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/hdlsim/sdrsim/hooking"
	"github.com/hdlsim/sdrsim/memory"
	"github.com/hdlsim/sdrsim/sdram/internal/addrdec"
)

// A Builder can build SDRAM chip models.
type Builder struct {
	rowBits     int
	colBits     int
	busWidth    int
	numBanks    int
	interleaved bool
	bigEndian   bool
	randomFill  bool
	hooks       []hooking.Hook
}

// MakeBuilder creates a builder with default parameters: 4 banks of 4096
// rows by 256 columns on a 16-bit bus, contiguous bank layout, little
// endian.
func MakeBuilder() Builder {
	return Builder{
		rowBits:  12,
		colBits:  8,
		busWidth: 16,
		numBanks: 4,
	}
}

// WithRowBits sets the number of row address bits per bank.
func (b Builder) WithRowBits(n int) Builder {
	b.rowBits = n
	return b
}

// WithColBits sets the number of column address bits per row.
func (b Builder) WithColBits(n int) Builder {
	b.colBits = n
	return b
}

// WithBusWidth sets the data bus width in bits. Must be 8, 16, 32, or 64.
func (b Builder) WithBusWidth(n int) Builder {
	b.busWidth = n
	return b
}

// WithNumBanks sets the number of banks. Must be 4 or 8.
func (b Builder) WithNumBanks(n int) Builder {
	b.numBanks = n
	return b
}

// WithInterleavedBanks selects the interleaved flat-address layout, where
// consecutive rows of the flat address space rotate through the banks. The
// default is the contiguous layout, where each bank occupies one contiguous
// region.
func (b Builder) WithInterleavedBanks() Builder {
	b.interleaved = true
	return b
}

// WithBigEndian stores multi-byte units in big-endian byte order. The
// default is little endian.
func (b Builder) WithBigEndian() Builder {
	b.bigEndian = true
	return b
}

// WithRandomFill fills the storage with pseudo-random data at build time,
// approximating the undefined content of a real chip at power-up. The
// default leaves the storage zeroed.
func (b Builder) WithRandomFill() Builder {
	b.randomFill = true
	return b
}

// WithAdditionalHooks adds hooks that are attached to the model at build
// time.
func (b Builder) WithAdditionalHooks(hooks ...hooking.Hook) Builder {
	b.hooks = append(b.hooks, hooks...)
	return b
}

// Build creates an SDRAM chip model. It panics if the parameters are not
// supported.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	busLog2 := busWidthLog2(b.busWidth)
	bankBits := 2
	if b.numBanks == 8 {
		bankBits = 3
	}

	banks := b.buildBanks(busLog2)
	decoder := b.buildDecoder(busLog2, bankBits, banks)

	c := &Comp{
		name:        name,
		decoder:     decoder,
		banks:       banks,
		bank:        make([]bankState, b.numBanks),
		rowBits:     b.rowBits,
		colBits:     b.colBits,
		bankBits:    bankBits,
		busLog2:     busLog2,
		numCols:     uint64(1) << b.colBits,
		maskCols:    uint64(1)<<b.colBits - 1,
		maskRows:    (uint64(1)<<b.rowBits - 1) << b.colBits,
		interleaved: b.interleaved,
	}
	c.pipe.reset()

	// At power-up every bank reports active; the initialization sequence
	// is expected to precharge all banks before the first refresh.
	for i := range c.bank {
		c.bank[i].active = true
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	return c
}

func (b Builder) parametersMustBeValid() {
	switch b.busWidth {
	case 8, 16, 32, 64:
	default:
		panic(fmt.Sprintf("bus width %d is not supported, must be 8, 16, 32, or 64",
			b.busWidth))
	}

	switch b.numBanks {
	case 4, 8:
	default:
		panic(fmt.Sprintf("bank count %d is not supported, must be 4 or 8",
			b.numBanks))
	}

	if b.rowBits <= 0 || b.colBits <= 0 {
		panic("row bits and column bits must be positive")
	}
}

func (b Builder) buildBanks(busLog2 int) []*memory.Storage {
	bankSize := uint64(1) << (b.rowBits + b.colBits + busLog2)

	banks := make([]*memory.Storage, b.numBanks)
	for i := range banks {
		banks[i] = memory.NewStorage(bankSize)
	}

	if b.randomFill {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for _, bank := range banks {
			bank.Randomize(rng)
		}
	}

	return banks
}

func (b Builder) buildDecoder(
	busLog2, bankBits int,
	banks []*memory.Storage,
) *addrdec.Decoder {
	layout := addrdec.Contiguous
	if b.interleaved {
		layout = addrdec.Interleaved
	}

	var order binary.ByteOrder = binary.LittleEndian
	if b.bigEndian {
		order = binary.BigEndian
	}

	return addrdec.New(addrdec.Config{
		RowBits:  b.rowBits,
		ColBits:  b.colBits,
		BankBits: bankBits,
		BusLog2:  busLog2,
		Layout:   layout,
		Order:    order,
	}, banks)
}

func busWidthLog2(width int) int {
	switch width {
	case 8:
		return 0
	case 16:
		return 1
	case 32:
		return 2
	default:
		return 3
	}
}
