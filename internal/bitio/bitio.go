// Package bitio implements the bit-level reader shared by every stage of
// the DEFLATE decoder. Bits are consumed least-significant-bit first
// within each byte, per RFC 1951 section 3.1.1: bytes are OR'd into a
// growing word as they arrive and drained low bits first.
package bitio

import (
	"bufio"
	"io"
)

// BitSequence is a run of bits accumulated one at a time, most
// significant bit first. Canonical Huffman codes are naturally built up
// this way: each new bit read from the stream becomes the new
// least-significant bit of the accumulator, which reconstructs the
// code's MSB-first transmission order without any separate reversal
// step.
type BitSequence struct {
	Bits uint16
	Len  uint8
}

// Concat appends next after b, widening the accumulator by next.Len bits.
func (b BitSequence) Concat(next BitSequence) BitSequence {
	return BitSequence{Bits: (b.Bits << next.Len) | next.Bits, Len: b.Len + next.Len}
}

// Reader reads individual bits and byte-aligned fields from an
// underlying byte stream. It borrows a *bufio.Reader rather than owning
// one outright so that a caller can recover the exact same byte-level
// cursor once bit-level reading is done (see AlignToByte) — this is how
// a gzip member parser hands its buffered source to the DEFLATE decoder
// and reclaims it afterward to read the trailer.
type Reader struct {
	r  *bufio.Reader
	b  uint32
	nb uint
}

// NewReader borrows r for bit-level reads.
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r}
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (r *Reader) moreBits() error {
	c, err := r.r.ReadByte()
	if err != nil {
		return noEOF(err)
	}
	r.b |= uint32(c) << r.nb
	r.nb += 8
	return nil
}

// ReadBits reads n bits, 0 <= n <= 24, LSB-first, returning them as the
// low n bits of the result. This is the convention DEFLATE uses for its
// fixed-width fields: block headers, HLIT/HDIST/HCLEN counts, and stored
// block lengths.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	for r.nb < n {
		if err := r.moreBits(); err != nil {
			return 0, err
		}
	}
	v := r.b & (1<<n - 1)
	r.b >>= n
	r.nb -= n
	return v, nil
}

// ReadBit reads a single bit as a BitSequence of length 1, suitable for
// folding into a BitSequence accumulator via Concat while probing an
// unknown-length Huffman code.
func (r *Reader) ReadBit() (BitSequence, error) {
	v, err := r.ReadBits(1)
	if err != nil {
		return BitSequence{}, err
	}
	return BitSequence{Bits: uint16(v), Len: 1}, nil
}

// AlignToByte discards any partially consumed byte so the next read
// begins at a byte boundary, as required before a stored block's length
// fields and raw data.
func (r *Reader) AlignToByte() {
	r.b = 0
	r.nb = 0
}

// ReadAlignedByte reads one raw byte, bypassing the bit accumulator. The
// accumulator must already be byte-aligned (see AlignToByte).
func (r *Reader) ReadAlignedByte() (byte, error) {
	return r.r.ReadByte()
}

// ReadAlignedFull reads len(p) raw bytes, bypassing the bit accumulator.
func (r *Reader) ReadAlignedFull(p []byte) error {
	_, err := io.ReadFull(r.r, p)
	return noEOF(err)
}
