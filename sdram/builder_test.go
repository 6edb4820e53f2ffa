package sdram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("should build a chip with the default geometry", func() {
		chip := MakeBuilder().Build("Chip")

		Expect(chip.Name()).To(Equal("Chip"))
		Expect(chip.BusWidth()).To(Equal(16))
		Expect(chip.Capacity()).To(Equal(uint64(4 * 4096 * 256 * 2)))
	})

	It("should build an 8-bank chip", func() {
		chip := MakeBuilder().
			WithNumBanks(8).
			WithBusWidth(32).
			Build("Chip")

		Expect(chip.Capacity()).To(Equal(uint64(8 * 4096 * 256 * 4)))
	})

	It("should panic on an unsupported bus width", func() {
		Expect(func() {
			MakeBuilder().WithBusWidth(24).Build("Chip")
		}).To(Panic())
	})

	It("should panic on an unsupported bank count", func() {
		Expect(func() {
			MakeBuilder().WithNumBanks(2).Build("Chip")
		}).To(Panic())
	})

	It("should fill the storage when random fill is requested", func() {
		chip := MakeBuilder().
			WithRowBits(4).
			WithColBits(4).
			WithRandomFill().
			Build("Chip")

		allZero := true
		for addr := uint64(0); addr < chip.Capacity(); addr++ {
			b, err := chip.ReadByte(addr)
			Expect(err).ToNot(HaveOccurred())
			if b != 0 {
				allZero = false
				break
			}
		}

		Expect(allZero).To(BeFalse())
	})
})
