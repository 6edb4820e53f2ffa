package sdram

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func directRead(chip *Comp, addr uint64) uint64 {
	switch chip.BusWidth() {
	case 8:
		b, err := chip.ReadByte(addr)
		Expect(err).ToNot(HaveOccurred())
		return uint64(b)
	case 16:
		w, err := chip.ReadWord(addr)
		Expect(err).ToNot(HaveOccurred())
		return uint64(w)
	case 32:
		l, err := chip.ReadLong(addr)
		Expect(err).ToNot(HaveOccurred())
		return uint64(l)
	default:
		q, err := chip.ReadQuad(addr)
		Expect(err).ToNot(HaveOccurred())
		return q
	}
}

var _ = Describe("Protocol round trips", func() {
	for _, width := range []int{8, 16, 32, 64} {
		for _, interleaved := range []bool{false, true} {
			for _, bigEndian := range []bool{false, true} {
				width := width
				interleaved := interleaved
				bigEndian := bigEndian

				layout := "contiguous"
				if interleaved {
					layout = "interleaved"
				}
				endian := "little"
				if bigEndian {
					endian = "big"
				}

				It(fmt.Sprintf(
					"should round-trip on a %d-bit %s %s-endian chip",
					width, layout, endian), func() {
					b := MakeBuilder().WithBusWidth(width)
					if interleaved {
						b = b.WithInterleavedBanks()
					}
					if bigEndian {
						b = b.WithBigEndian()
					}
					chip := b.Build("Chip")

					d := &driver{chip: chip}
					d.initChip(0x20) // CAS 2, burst 1
					d.activate(0, 0x003)

					value := uint64(0x1122334455667788) &
						(^uint64(0) >> (64 - width))

					wr := MakePins(CmdWrite)
					wr.Addr = 7
					wr.DQ = value
					d.cycle(wr)

					rd := MakePins(CmdRead)
					rd.Addr = 7
					d.cycle(rd)
					d.nop()
					Expect(d.nop()).To(Equal(value))

					// Bank 0, row 3, column 7 as a flat byte address. The
					// interleaved layout holds the bank field between the
					// column and row fields.
					unit := uint64(0x003)<<8 | 7
					if interleaved {
						unit = uint64(0x003)<<10 | 7
					}

					log2 := map[int]uint{8: 0, 16: 1, 32: 2, 64: 3}[width]
					Expect(directRead(chip, unit<<log2)).To(Equal(value))
				})
			}
		}
	}
})
