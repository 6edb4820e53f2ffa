package sdram

import (
	"io"
	"os"
)

// LoadImage copies the whole content of r into the storage, starting at a
// row-aligned flat byte address and walking rows in the configured layout
// order. It returns the number of bytes loaded. If the image runs past the
// last addressable row the rows loaded so far are kept and the error is
// addrdec.ErrOverflow.
func (c *Comp) LoadImage(r io.Reader, addr uint64) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	return c.decoder.WriteRange(addr, data)
}

// SaveImage writes size bytes of storage content to w, starting at a
// row-aligned flat byte address and walking rows in the configured layout
// order. It returns the number of bytes saved.
func (c *Comp) SaveImage(w io.Writer, addr, size uint64) (int, error) {
	buf := make([]byte, size)

	n, rangeErr := c.decoder.ReadRange(addr, buf)

	written, err := w.Write(buf[:n])
	if err != nil {
		return written, err
	}

	return written, rangeErr
}

// LoadImageFile loads a binary image file into the storage at a row-aligned
// flat byte address.
func (c *Comp) LoadImageFile(path string, addr uint64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return c.LoadImage(f, addr)
}

// SaveImageFile saves size bytes of storage content into a binary image
// file, starting at a row-aligned flat byte address.
func (c *Comp) SaveImageFile(path string, addr, size uint64) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return c.SaveImage(f, addr, size)
}
