// Package huffman builds and decodes canonical Huffman codes as used by
// DEFLATE (RFC 1951 section 3.2.2): literal/length, distance, and
// code-length alphabets all share the same construction, so Coding is
// generic over the symbol type each alphabet decodes to.
package huffman

import (
	"github.com/jnsgr/degzip/internal/bitio"
	"github.com/jnsgr/degzip/internal/decodeerr"
)

// Coding is a canonical Huffman code mapping bit sequences to symbols of
// type T.
type Coding[T any] struct {
	byCode map[bitio.BitSequence]T
}

// FromLengths builds a canonical Huffman code from a table of per-symbol
// code lengths, following the RFC 1951 3.2.2 algorithm: count codes of
// each length, derive the first code of each length in order, then
// assign consecutive codes to symbols of that length in symbol order.
// Symbols with a zero length take no code. syms must have the same
// length as lengths and supplies the T value for each index.
func FromLengths[T any](lengths []int, syms []T) (Coding[T], error) {
	if len(lengths) != len(syms) {
		panic("huffman: lengths and syms length mismatch")
	}

	maxLen := 0
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}

	blCount := make([]int, maxLen+1)
	for _, l := range lengths {
		if l > 0 {
			blCount[l]++
		}
	}

	code := 0
	nextCode := make([]int, maxLen+1)
	for bits := 1; bits <= maxLen; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}

	byCode := make(map[bitio.BitSequence]T, len(lengths))
	for i, l := range lengths {
		if l == 0 {
			continue
		}
		if nextCode[l] >= 1<<uint(l) {
			return Coding[T]{}, decodeerr.ErrInvalidTreeEncoding
		}
		seq := bitio.BitSequence{Bits: uint16(nextCode[l]), Len: uint8(l)}
		if _, dup := byCode[seq]; dup {
			return Coding[T]{}, decodeerr.ErrInvalidTreeEncoding
		}
		byCode[seq] = syms[i]
		nextCode[l]++
	}

	return Coding[T]{byCode: byCode}, nil
}

// ReadSymbol reads one bit at a time from r, accumulating a BitSequence,
// until the accumulated bits match a code in the table. Because the
// accumulator folds each new bit in as the new low bit of a value shifted
// left on every step, it reconstructs the code exactly as DEFLATE
// transmits it: most-significant-bit first.
func (c Coding[T]) ReadSymbol(r *bitio.Reader) (T, error) {
	var acc bitio.BitSequence
	var zero T
	for acc.Len < 16 {
		bit, err := r.ReadBit()
		if err != nil {
			return zero, err
		}
		acc = acc.Concat(bit)
		if sym, ok := c.byCode[acc]; ok {
			return sym, nil
		}
	}
	return zero, decodeerr.ErrInvalidHuffmanCode
}
