// Package decodeerr defines the sentinel errors shared by every stage of
// the gzip/DEFLATE decoder. It has no dependencies on the rest of the
// module so that both the internal stages and the root package can import
// it without creating a cycle.
package decodeerr

import "errors"

var (
	// ErrBadMagic is returned when a member does not start with the
	// gzip magic bytes 0x1f 0x8b.
	ErrBadMagic = errors.New("degzip: bad gzip magic number")

	// ErrUnsupportedMethod is returned when the compression method byte
	// in a member header is not 8 (deflate).
	ErrUnsupportedMethod = errors.New("degzip: unsupported compression method")

	// ErrHeaderCRC is returned when the optional FHCRC field does not
	// match the CRC-16 computed over the header bytes read so far.
	ErrHeaderCRC = errors.New("degzip: header CRC16 mismatch")

	// ErrReservedBlockType is returned when a DEFLATE block header
	// specifies BTYPE 11, which is reserved and never valid.
	ErrReservedBlockType = errors.New("degzip: reserved deflate block type")

	// ErrBadStoredLength is returned when a stored block's LEN and NLEN
	// fields are not complements of one another.
	ErrBadStoredLength = errors.New("degzip: stored block length check failed")

	// ErrInvalidHuffmanCode is returned when a bit sequence cannot be
	// resolved to any symbol in a canonical Huffman code.
	ErrInvalidHuffmanCode = errors.New("degzip: invalid huffman code")

	// ErrInvalidTreeEncoding is returned when the code-length sequence
	// describing the dynamic literal/length or distance trees is
	// malformed, e.g. a repeat instruction with no preceding length.
	ErrInvalidTreeEncoding = errors.New("degzip: invalid dynamic huffman tree encoding")

	// ErrInvalidDistance is returned when a back-reference names a
	// distance of zero, a distance larger than the data produced so
	// far, or a distance symbol outside the valid range.
	ErrInvalidDistance = errors.New("degzip: invalid back-reference distance")

	// ErrDataCRC32 is returned when a member's trailing CRC32 does not
	// match the CRC32 of the decompressed data actually produced.
	ErrDataCRC32 = errors.New("degzip: data CRC32 mismatch")

	// ErrDataSize is returned when a member's trailing ISIZE does not
	// match the low 32 bits of the decompressed byte count.
	ErrDataSize = errors.New("degzip: data size mismatch")
)
