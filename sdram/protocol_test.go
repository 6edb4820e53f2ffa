package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Chip protocol", func() {
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
	})

	It("should write a burst and read it back after the CAS latency", func() {
		d.initChip(0x22) // CAS 2, burst 4, sequential
		d.activate(1, 0x002)

		wr := MakePins(CmdWrite)
		wr.BA = 1
		wr.Addr = 4
		wr.DQ = 0x1111
		d.cycle(wr)

		for _, data := range []uint64{0x2222, 0x3333, 0x4444} {
			nop := MakePins(CmdNOP)
			nop.DQ = data
			d.cycle(nop)
		}

		rd := MakePins(CmdRead)
		rd.BA = 1
		rd.Addr = 4
		Expect(d.cycle(rd)).To(Equal(uint64(0)))
		Expect(d.nop()).To(Equal(uint64(0)))

		Expect(d.nop()).To(Equal(uint64(0x1111)))
		Expect(d.nop()).To(Equal(uint64(0x2222)))
		Expect(d.nop()).To(Equal(uint64(0x3333)))
		Expect(d.nop()).To(Equal(uint64(0x4444)))

		// Bank 1, row 2, column 4 as a flat byte address.
		word, err := chip.ReadWord(1<<21 | 0x002<<9 | 4<<1)
		Expect(err).ToNot(HaveOccurred())
		Expect(word).To(Equal(uint16(0x1111)))
	})

	It("should hold the last read value between bursts", func() {
		d.initChip(0x20) // CAS 2, burst 1
		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.DQ = 0xBEEF
		d.cycle(wr)

		d.cycle(MakePins(CmdRead))
		d.nop()
		Expect(d.nop()).To(Equal(uint64(0xBEEF)))
		Expect(d.nop()).To(Equal(uint64(0xBEEF)))
		Expect(d.nop()).To(Equal(uint64(0xBEEF)))
	})

	It("should wrap a sequential burst inside its aligned block", func() {
		d.initChip(0x22)
		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.Addr = 6
		wr.DQ = 0xAAA6
		d.cycle(wr)

		for _, data := range []uint64{0xAAA7, 0xAAA4, 0xAAA5} {
			nop := MakePins(CmdNOP)
			nop.DQ = data
			d.cycle(nop)
		}

		for col := uint64(4); col <= 7; col++ {
			word, err := chip.ReadWord(col << 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint16(0xAAA0 | col)))
		}
	})

	It("should mask write byte lanes selected by DQM", func() {
		d.initChip(0x20) // CAS 2, burst 1

		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.DQ = 0xFFFF
		d.cycle(wr)

		wr = MakePins(CmdWrite)
		wr.DQ = 0x1234
		wr.DQM = 0b01
		d.cycle(wr)

		word, err := chip.ReadWord(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(word).To(Equal(uint16(0x12FF)))

		wr = MakePins(CmdWrite)
		wr.DQ = 0x5678
		wr.DQM = 0b11
		d.cycle(wr)

		word, err = chip.ReadWord(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(word).To(Equal(uint16(0x12FF)))
	})

	It("should gate read data with the delayed DQM", func() {
		d.initChip(0x22)
		d.activate(0, 0)

		for col, data := range []uint64{0x1111, 0x2222, 0x3333, 0x4444} {
			Expect(chip.WriteWord(uint64(col)<<1, uint16(data))).To(Succeed())
		}

		d.cycle(MakePins(CmdRead))
		d.nop()

		// The mask presented one cycle before a data beat gates that beat.
		masked := MakePins(CmdNOP)
		masked.DQM = 0b11
		Expect(d.cycle(masked)).To(Equal(uint64(0x1111)))
		Expect(d.nop()).To(Equal(uint64(0)))
		Expect(d.nop()).To(Equal(uint64(0x3333)))
		Expect(d.nop()).To(Equal(uint64(0x4444)))
	})

	It("should stop a read burst after the CAS latency of a burst stop", func() {
		d.initChip(0x23) // CAS 2, burst 8
		d.activate(0, 0)

		d.cycle(MakePins(CmdRead))
		d.nop()
		d.cycle(MakePins(CmdBurstStop))

		for i := 0; i < 8; i++ {
			d.nop()
		}

		Expect(collector.beats).To(HaveLen(2))
	})

	It("should stop a write burst immediately", func() {
		d.initChip(0x23)
		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		d.cycle(wr)
		d.nop()
		d.cycle(MakePins(CmdBurstStop))

		for i := 0; i < 8; i++ {
			d.nop()
		}

		Expect(collector.beats).To(HaveLen(2))
	})

	It("should auto-precharge the bank when the burst completes", func() {
		d.initChip(0x21) // CAS 2, burst 2
		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.Addr = 0x400 // auto-precharge
		d.cycle(wr)
		d.nop()

		// All banks are precharged again, so a refresh is legal.
		d.cycle(MakePins(CmdRefresh))
		Expect(collector.violations).To(BeEmpty())

		// And the bank accepts a new activate.
		d.activate(0, 0x001)
		Expect(collector.violations).To(BeEmpty())
	})

	It("should reject a precharge of an auto-precharged bank", func() {
		d.initChip(0x22)
		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.Addr = 0x400
		d.cycle(wr)

		pre := MakePins(CmdPrecharge)
		pre.Addr = 0x400
		d.cycle(pre)

		Expect(collector.violations).To(HaveLen(1))
		Expect(collector.violations[0].Cmd).To(Equal(CmdPrecharge))
	})

	It("should reject a single-bank precharge of an auto-precharged bank",
		func() {
			d.initChip(0x22)
			d.activate(1, 0)

			wr := MakePins(CmdWrite)
			wr.BA = 1
			wr.Addr = 0x400
			d.cycle(wr)

			pre := MakePins(CmdPrecharge)
			pre.BA = 1
			d.cycle(pre)

			Expect(collector.violations).To(HaveLen(1))
			Expect(collector.violations[0].Cmd).To(Equal(CmdPrecharge))
			Expect(collector.violations[0].Bank).To(Equal(1))

			// The rejected precharge is a no-op: the write burst runs to
			// completion and the auto-precharge still closes the bank.
			d.nop()
			d.nop()
			Expect(collector.beats).To(HaveLen(4))

			d.activate(1, 0x001)
			Expect(collector.violations).To(HaveLen(1))
		})

	It("should reject a burst stop against an auto-precharged bank", func() {
		d.initChip(0x23) // burst 8
		d.activate(2, 0)

		wr := MakePins(CmdWrite)
		wr.BA = 2
		wr.Addr = 0x400
		d.cycle(wr)

		bst := MakePins(CmdBurstStop)
		bst.BA = 2
		d.cycle(bst)

		Expect(collector.violations).To(HaveLen(1))
		Expect(collector.violations[0].Cmd).To(Equal(CmdBurstStop))
		Expect(collector.violations[0].Bank).To(Equal(2))

		// The rejected burst stop does not terminate the burst.
		for i := 0; i < 6; i++ {
			d.nop()
		}
		Expect(collector.beats).To(HaveLen(8))
	})

	It("should accept but never complete a read when the CAS code disables "+
		"pipelining", func() {
		d.initChip(0x12) // CAS code 1, burst 4

		d.activate(0, 0)

		wr := MakePins(CmdWrite)
		wr.DQ = 0xBEEF
		d.cycle(wr)
		d.nop()
		d.nop()
		d.nop()
		Expect(collector.beats).To(HaveLen(4))

		d.cycle(MakePins(CmdRead))
		for i := 0; i < 8; i++ {
			Expect(d.nop()).To(Equal(uint64(0)))
		}

		Expect(collector.violations).To(BeEmpty())
		Expect(collector.beats).To(HaveLen(4))
	})

	It("should reject a write to a bank that is not activated", func() {
		d.initChip(0x22)

		wr := MakePins(CmdWrite)
		wr.BA = 2
		d.cycle(wr)

		Expect(collector.violations).To(HaveLen(1))
		Expect(collector.violations[0].Bank).To(Equal(2))
		Expect(collector.beats).To(BeEmpty())
	})

	It("should reject a refresh while a bank is open", func() {
		d.initChip(0x22)
		d.activate(0, 0)

		d.cycle(MakePins(CmdRefresh))

		Expect(collector.violations).To(HaveLen(1))
		Expect(collector.violations[0].Cmd).To(Equal(CmdRefresh))
	})

	It("should terminate a write burst hit by a precharge", func() {
		d.initChip(0x23) // burst 8
		d.activate(0, 0)

		d.cycle(MakePins(CmdWrite))
		d.nop()

		pre := MakePins(CmdPrecharge)
		d.cycle(pre)

		for i := 0; i < 8; i++ {
			d.nop()
		}

		Expect(collector.beats).To(HaveLen(2))
	})

	It("should freeze while clock-enable is low", func() {
		act := MakePins(CmdActivate)
		act.CKE = false
		act.Clk = true

		chip.Eval(0, act)
		chip.Eval(1, act)

		Expect(collector.commands).To(BeEmpty())
	})

	It("should report the decoded mode register", func() {
		d.initChip(0x222) // CAS 2, read burst 4, single-location write

		lmr := collector.commands[2]
		Expect(lmr.Cmd).To(Equal(CmdLoadModeRegister))
		Expect(lmr.Mode.CASLatency).To(Equal(2))
		Expect(lmr.Mode.BurstLenRead).To(Equal(4))
		Expect(lmr.Mode.BurstLenWrite).To(Equal(1))
		Expect(lmr.Mode.Interleaved).To(BeFalse())
	})

	It("should decode a continuous burst", func() {
		d.initChip(0x27)

		lmr := collector.commands[2]
		Expect(lmr.Mode.BurstLenRead).To(Equal(256))
		Expect(lmr.Mode.Continuous).To(BeTrue())
	})
})

var _ = Describe("Chip protocol with mock hooks", func() {
	var (
		mockCtrl *gomock.Controller
		mockHook *MockHook
		chip     *Comp
		d        *driver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockHook = NewMockHook(mockCtrl)
		chip = MakeBuilder().
			WithAdditionalHooks(mockHook).
			Build("Chip")
		d = &driver{chip: chip}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report an activate of an open bank as a violation", func() {
		// Banks power up open, so the first activate must be rejected.
		mockHook.EXPECT().Func(gomock.Any()).Times(2)

		d.activate(0, 0x005)
	})
})
