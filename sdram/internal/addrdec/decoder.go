// Package addrdec maps flat byte addresses onto the (bank, row, column)
// organization of an SDRAM array and encodes/decodes data units in the
// configured byte order.
package addrdec

import (
	"encoding/binary"
	"errors"

	"github.com/hdlsim/sdrsim/memory"
)

// Layout selects where the bank-select bits sit inside a flat address.
type Layout int

const (
	// Contiguous places the bank-select bits as the most-significant field.
	//
	//	|  banks  |      rows       |     columns     |
	Contiguous Layout = iota

	// Interleaved places the bank-select bits between the column and row
	// fields.
	//
	//	|      rows       |  banks  |     columns     |
	Interleaved
)

// Config describes the geometry the decoder operates on. RowBits, ColBits,
// and BankBits are the widths of the row, column, and bank-select address
// fields. BusLog2 is log2 of the data bus width in bytes.
type Config struct {
	RowBits  int
	ColBits  int
	BankBits int
	BusLog2  int
	Layout   Layout
	Order    binary.ByteOrder
}

// ErrOverflow is returned when a range transfer runs past the last
// addressable row. Rows transferred before the overflow stay transferred.
var ErrOverflow = errors.New("address range exceeds addressable capacity")

// A Decoder resolves flat addresses into per-bank storage locations.
//
// Accesses of a given width treat memory as an array of units of that width;
// the row, column, and bank fields are extracted from the unit index. The
// byte order is fixed at construction and applied symmetrically on encode
// and decode, so the behavior does not depend on the host.
type Decoder struct {
	layout   Layout
	order    binary.ByteOrder
	rowBits  int
	colBits  int
	bankBits int
	busLog2  int

	numRows  uint64
	numCols  uint64
	numBanks int

	// Unit-index masks for the column, row, and bank fields.
	maskCols uint64
	maskRows uint64
	maskBank uint64

	banks []*memory.Storage
}

// New creates a Decoder over the given per-bank storage.
func New(cfg Config, banks []*memory.Storage) *Decoder {
	d := &Decoder{
		layout:   cfg.Layout,
		order:    cfg.Order,
		rowBits:  cfg.RowBits,
		colBits:  cfg.ColBits,
		bankBits: cfg.BankBits,
		busLog2:  cfg.BusLog2,
		numRows:  1 << cfg.RowBits,
		numCols:  1 << cfg.ColBits,
		numBanks: 1 << cfg.BankBits,
		banks:    banks,
	}

	if len(banks) != d.numBanks {
		panic("bank count does not match the bank-select field width")
	}

	d.maskCols = d.numCols - 1
	d.maskRows = (d.numRows - 1) << cfg.ColBits
	d.maskBank = uint64(d.numBanks-1) << cfg.ColBits

	if cfg.Layout == Interleaved {
		d.maskRows <<= cfg.BankBits
	} else {
		d.maskBank <<= cfg.RowBits
	}

	return d
}

// Capacity returns the total addressable capacity in bytes.
func (d *Decoder) Capacity() uint64 {
	return d.numRows * d.numCols * uint64(d.numBanks) << d.busLog2
}

// RowBytes returns the size of one row in bytes.
func (d *Decoder) RowBytes() int {
	return 1 << (d.colBits + d.busLog2)
}

// Locate resolves a unit index into a bank number and a unit index within
// that bank.
func (d *Decoder) Locate(unit uint64) (bank int, idx uint64) {
	if d.layout == Interleaved {
		bank = int((unit & d.maskBank) >> d.colBits)
		idx = (unit & d.maskCols) | ((unit & d.maskRows) >> d.bankBits)
		return bank, idx
	}

	bank = int((unit & d.maskBank) >> (d.colBits + d.rowBits))
	idx = unit & (d.maskCols | d.maskRows)

	return bank, idx
}

// ReadByte reads one byte at a flat byte address.
func (d *Decoder) ReadByte(addr uint64) (byte, error) {
	bank, idx := d.Locate(addr)

	data, err := d.banks[bank].Read(idx, 1)
	if err != nil {
		return 0, err
	}

	return data[0], nil
}

// ReadWord reads a 16-bit unit at a flat byte address.
func (d *Decoder) ReadWord(addr uint64) (uint16, error) {
	bank, idx := d.Locate(addr >> 1)

	data, err := d.banks[bank].Read(idx<<1, 2)
	if err != nil {
		return 0, err
	}

	return d.order.Uint16(data), nil
}

// ReadLong reads a 32-bit unit at a flat byte address.
func (d *Decoder) ReadLong(addr uint64) (uint32, error) {
	bank, idx := d.Locate(addr >> 2)

	data, err := d.banks[bank].Read(idx<<2, 4)
	if err != nil {
		return 0, err
	}

	return d.order.Uint32(data), nil
}

// ReadQuad reads a 64-bit unit at a flat byte address.
func (d *Decoder) ReadQuad(addr uint64) (uint64, error) {
	bank, idx := d.Locate(addr >> 3)

	data, err := d.banks[bank].Read(idx<<3, 8)
	if err != nil {
		return 0, err
	}

	return d.order.Uint64(data), nil
}

// WriteByte writes one byte at a flat byte address.
func (d *Decoder) WriteByte(addr uint64, data byte) error {
	bank, idx := d.Locate(addr)
	return d.banks[bank].Write(idx, []byte{data})
}

// WriteWord writes a 16-bit unit at a flat byte address.
func (d *Decoder) WriteWord(addr uint64, data uint16) error {
	bank, idx := d.Locate(addr >> 1)

	buf := make([]byte, 2)
	d.order.PutUint16(buf, data)

	return d.banks[bank].Write(idx<<1, buf)
}

// WriteLong writes a 32-bit unit at a flat byte address.
func (d *Decoder) WriteLong(addr uint64, data uint32) error {
	bank, idx := d.Locate(addr >> 2)

	buf := make([]byte, 4)
	d.order.PutUint32(buf, data)

	return d.banks[bank].Write(idx<<2, buf)
}

// WriteQuad writes a 64-bit unit at a flat byte address.
func (d *Decoder) WriteQuad(addr uint64, data uint64) error {
	bank, idx := d.Locate(addr >> 3)

	buf := make([]byte, 8)
	d.order.PutUint64(buf, data)

	return d.banks[bank].Write(idx<<3, buf)
}

// ReadUnit reads one bus-width unit at a unit index within a bank. The
// protocol engine resolves the bank and index itself from the active row and
// the burst column.
func (d *Decoder) ReadUnit(bank int, idx uint64) (uint64, error) {
	data, err := d.banks[bank].Read(idx<<d.busLog2, uint64(1)<<d.busLog2)
	if err != nil {
		return 0, err
	}

	return d.decodeUnit(data), nil
}

// WriteUnit writes one bus-width unit at a unit index within a bank. Only
// the byte lanes selected by laneMask are overwritten; the remaining lanes
// keep their previous content.
func (d *Decoder) WriteUnit(bank int, idx uint64, data, laneMask uint64) error {
	unitBytes := uint64(1) << d.busLog2
	allLanes := ^uint64(0) >> (64 - 8*unitBytes)

	if laneMask&allLanes != allLanes {
		old, err := d.ReadUnit(bank, idx)
		if err != nil {
			return err
		}

		data = data&laneMask | old&^laneMask
	}

	buf := make([]byte, unitBytes)
	d.encodeUnit(buf, data)

	return d.banks[bank].Write(idx<<d.busLog2, buf)
}

func (d *Decoder) decodeUnit(data []byte) uint64 {
	switch d.busLog2 {
	case 0:
		return uint64(data[0])
	case 1:
		return uint64(d.order.Uint16(data))
	case 2:
		return uint64(d.order.Uint32(data))
	default:
		return d.order.Uint64(data)
	}
}

func (d *Decoder) encodeUnit(buf []byte, data uint64) {
	switch d.busLog2 {
	case 0:
		buf[0] = byte(data)
	case 1:
		d.order.PutUint16(buf, uint16(data))
	case 2:
		d.order.PutUint32(buf, uint32(data))
	default:
		d.order.PutUint64(buf, data)
	}
}

// WriteRange copies data into consecutive rows starting at a row-aligned
// flat byte address, walking banks and rows in the configured layout order.
// It returns the number of bytes written. Writing past the last addressable
// row reports ErrOverflow; rows already written are kept.
func (d *Decoder) WriteRange(addr uint64, data []byte) (int, error) {
	return d.walkRows(addr, len(data), func(bank int, rowBase uint64, off, n int) error {
		return d.banks[bank].Write(rowBase, data[off:off+n])
	})
}

// ReadRange fills buf from consecutive rows starting at a row-aligned flat
// byte address, walking banks and rows in the configured layout order. It
// returns the number of bytes read, with ErrOverflow when the range runs
// past the last addressable row.
func (d *Decoder) ReadRange(addr uint64, buf []byte) (int, error) {
	return d.walkRows(addr, len(buf), func(bank int, rowBase uint64, off, n int) error {
		row, err := d.banks[bank].Read(rowBase, uint64(n))
		if err != nil {
			return err
		}

		copy(buf[off:], row)

		return nil
	})
}

func (d *Decoder) walkRows(
	addr uint64,
	size int,
	visit func(bank int, rowBase uint64, off, n int) error,
) (int, error) {
	rowBytes := d.RowBytes()
	rowPos := addr >> (d.colBits + d.busLog2)

	var bank int
	if d.layout == Interleaved {
		bank = int(rowPos) & (d.numBanks - 1)
		rowPos >>= d.bankBits
	} else {
		bank = int(rowPos >> d.rowBits)
		rowPos &= d.numRows - 1
	}

	if bank >= d.numBanks || rowPos >= d.numRows {
		return 0, ErrOverflow
	}

	done := 0
	for done < size {
		n := rowBytes
		if size-done < n {
			n = size - done
		}

		rowBase := rowPos << (d.colBits + d.busLog2)
		if err := visit(bank, rowBase, done, n); err != nil {
			return done, err
		}
		done += n

		if done == size {
			break
		}

		if d.layout == Interleaved {
			bank = (bank + 1) & (d.numBanks - 1)
			if bank == 0 {
				rowPos++
				if rowPos == d.numRows {
					return done, ErrOverflow
				}
			}
		} else {
			rowPos = (rowPos + 1) & (d.numRows - 1)
			if rowPos == 0 {
				bank++
				if bank == d.numBanks {
					return done, ErrOverflow
				}
			}
		}
	}

	return done, nil
}
