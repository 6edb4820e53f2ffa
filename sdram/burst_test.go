package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Interleaved bursts", func() {
	var (
		chip      *Comp
		collector *collectorHook
		d         *driver
	)

	BeforeEach(func() {
		collector = &collectorHook{}
		chip = MakeBuilder().
			WithAdditionalHooks(collector).
			Build("Chip")
		d = &driver{chip: chip}

		d.initChip(0x2A) // CAS 2, burst 4, interleaved
		d.activate(0, 0)

		for col := uint64(0); col < 8; col++ {
			Expect(chip.WriteWord(col<<1, uint16(0xC0|col))).To(Succeed())
		}
	})

	readBurst := func(col uint16, beats int) []uint64 {
		rd := MakePins(CmdRead)
		rd.Addr = col
		d.cycle(rd)
		d.nop()

		out := make([]uint64, beats)
		for i := range out {
			out[i] = d.nop()
		}

		return out
	}

	It("should read an aligned burst in natural order", func() {
		Expect(readBurst(0, 4)).To(Equal(
			[]uint64{0xC0, 0xC1, 0xC2, 0xC3}))
	})

	It("should XOR the beat index into an unaligned burst", func() {
		Expect(readBurst(2, 4)).To(Equal(
			[]uint64{0xC2, 0xC3, 0xC0, 0xC1}))
	})

	It("should follow the XOR order for a write burst", func() {
		wr := MakePins(CmdWrite)
		wr.Addr = 6
		wr.DQ = 0xD0
		d.cycle(wr)

		for _, data := range []uint64{0xD1, 0xD2, 0xD3} {
			nop := MakePins(CmdNOP)
			nop.DQ = data
			d.cycle(nop)
		}

		// Start column 6 visits 6, 7, 4, 5.
		for i, col := range []uint64{6, 7, 4, 5} {
			word, err := chip.ReadWord(col << 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint16(0xD0 + i)))
		}
	})
})

var _ = Describe("Interleaved bursts of length 8", func() {
	var (
		chip *Comp
		d    *driver
	)

	BeforeEach(func() {
		chip = MakeBuilder().Build("Chip")
		d = &driver{chip: chip}

		d.initChip(0x2B) // CAS 2, burst 8, interleaved
		d.activate(0, 0)

		for col := uint64(0); col < 8; col++ {
			Expect(chip.WriteWord(col<<1, uint16(0xC0|col))).To(Succeed())
		}
	})

	It("should XOR the beat index over the whole burst", func() {
		rd := MakePins(CmdRead)
		rd.Addr = 2
		d.cycle(rd)
		d.nop()

		out := make([]uint64, 8)
		for i := range out {
			out[i] = d.nop()
		}

		Expect(out).To(Equal(
			[]uint64{0xC2, 0xC3, 0xC0, 0xC1, 0xC6, 0xC7, 0xC4, 0xC5}))
	})
})
