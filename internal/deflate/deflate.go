// Package deflate decodes RFC 1951 DEFLATE blocks: stored, fixed
// Huffman, and dynamic Huffman. Decoded bytes are written to a
// window.Sink, which owns the sliding-window history used to resolve
// back-references and the running CRC32/size used by the gzip member
// trailer check.
package deflate

import (
	"sync"

	"github.com/jnsgr/degzip/internal/bitio"
	"github.com/jnsgr/degzip/internal/decodeerr"
	"github.com/jnsgr/degzip/internal/huffman"
	"github.com/jnsgr/degzip/internal/window"
)

// BlockType is the two-bit BTYPE field of a DEFLATE block header.
type BlockType uint8

const (
	Stored BlockType = iota
	FixedHuffman
	DynamicHuffman
	reserved
)

// BlockHeader is the 3-bit prefix of every DEFLATE block.
type BlockHeader struct {
	Final bool
	Type  BlockType
}

// ReadBlockHeader reads the final-block flag and block type from r.
func ReadBlockHeader(r *bitio.Reader) (BlockHeader, error) {
	final, err := r.ReadBits(1)
	if err != nil {
		return BlockHeader{}, err
	}
	bt, err := r.ReadBits(2)
	if err != nil {
		return BlockHeader{}, err
	}
	if BlockType(bt) == reserved {
		return BlockHeader{}, decodeerr.ErrReservedBlockType
	}
	return BlockHeader{Final: final == 1, Type: BlockType(bt)}, nil
}

// DecodeBlock decodes a single DEFLATE block of the type named by hdr,
// writing its output to sink.
func DecodeBlock(r *bitio.Reader, sink *window.Sink, hdr BlockHeader) error {
	switch hdr.Type {
	case Stored:
		return decodeStored(r, sink)
	case FixedHuffman:
		lit, dist := fixedTables()
		return decodeHuffman(r, sink, lit, dist)
	case DynamicHuffman:
		lit, dist, err := readDynamicTrees(r)
		if err != nil {
			return err
		}
		return decodeHuffman(r, sink, lit, dist)
	default:
		return decodeerr.ErrReservedBlockType
	}
}

func decodeStored(r *bitio.Reader, sink *window.Sink) error {
	r.AlignToByte()

	var lenBuf [4]byte
	if err := r.ReadAlignedFull(lenBuf[:]); err != nil {
		return err
	}
	length := uint16(lenBuf[0]) | uint16(lenBuf[1])<<8
	nlength := uint16(lenBuf[2]) | uint16(lenBuf[3])<<8
	if nlength != ^length {
		return decodeerr.ErrBadStoredLength
	}

	buf := make([]byte, length)
	if err := r.ReadAlignedFull(buf); err != nil {
		return err
	}
	_, err := sink.Write(buf)
	return err
}

// TreeCodeKind classifies a symbol from the 19-entry code-length
// alphabet used to transmit the dynamic literal/length and distance
// trees (RFC 1951 section 3.2.7).
type TreeCodeKind uint8

const (
	TreeCodeLength TreeCodeKind = iota
	TreeCodeCopyPrev
	TreeCodeRepeatZero3
	TreeCodeRepeatZero7
)

// TreeCodeToken is a decoded code-length-alphabet symbol.
type TreeCodeToken struct {
	Kind  TreeCodeKind
	Value int // the literal code length, valid when Kind == TreeCodeLength
}

func classifyTreeCode(sym int) (TreeCodeToken, error) {
	switch {
	case sym >= 0 && sym <= 15:
		return TreeCodeToken{Kind: TreeCodeLength, Value: sym}, nil
	case sym == 16:
		return TreeCodeToken{Kind: TreeCodeCopyPrev}, nil
	case sym == 17:
		return TreeCodeToken{Kind: TreeCodeRepeatZero3}, nil
	case sym == 18:
		return TreeCodeToken{Kind: TreeCodeRepeatZero7}, nil
	default:
		return TreeCodeToken{}, decodeerr.ErrInvalidTreeEncoding
	}
}

// LitLenKind classifies a symbol from the literal/length alphabet.
type LitLenKind uint8

const (
	LitLenLiteral LitLenKind = iota
	LitLenEndOfBlock
	LitLenLength
)

// LitLenToken is a decoded literal/length-alphabet symbol.
type LitLenToken struct {
	Kind    LitLenKind
	Literal byte
	Symbol  uint16 // raw length symbol 257-285, valid when Kind == LitLenLength
}

func classifyLitLen(sym uint16) (LitLenToken, error) {
	switch {
	case sym <= 255:
		return LitLenToken{Kind: LitLenLiteral, Literal: byte(sym)}, nil
	case sym == 256:
		return LitLenToken{Kind: LitLenEndOfBlock}, nil
	case sym >= 257 && sym <= 285:
		return LitLenToken{Kind: LitLenLength, Symbol: sym}, nil
	default:
		return LitLenToken{}, decodeerr.ErrInvalidHuffmanCode
	}
}

var lengthBase = [...]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [...]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

var distBase = [...]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtraBits = [...]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

func resolveLength(sym uint16, r *bitio.Reader) (int, error) {
	idx := int(sym) - 257
	if idx < 0 || idx >= len(lengthBase) {
		return 0, decodeerr.ErrInvalidHuffmanCode
	}
	extra, err := r.ReadBits(lengthExtraBits[idx])
	if err != nil {
		return 0, err
	}
	return lengthBase[idx] + int(extra), nil
}

func resolveDistance(sym uint16, r *bitio.Reader) (int, error) {
	idx := int(sym)
	if idx >= 30 {
		return 0, decodeerr.ErrInvalidDistance
	}
	extra, err := r.ReadBits(distExtraBits[idx])
	if err != nil {
		return 0, err
	}
	return distBase[idx] + int(extra), nil
}

func decodeHuffman(r *bitio.Reader, sink *window.Sink, lit, dist huffman.Coding[uint16]) error {
	for {
		sym, err := lit.ReadSymbol(r)
		if err != nil {
			return err
		}
		tok, err := classifyLitLen(sym)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case LitLenLiteral:
			if err := sink.WriteByte(tok.Literal); err != nil {
				return err
			}
		case LitLenEndOfBlock:
			return nil
		case LitLenLength:
			length, err := resolveLength(tok.Symbol, r)
			if err != nil {
				return err
			}
			distSym, err := dist.ReadSymbol(r)
			if err != nil {
				return err
			}
			distance, err := resolveDistance(distSym, r)
			if err != nil {
				return err
			}
			if err := sink.CopyPrevious(distance, length); err != nil {
				return err
			}
		}
	}
}

var (
	fixedOnce sync.Once
	fixedLit  huffman.Coding[uint16]
	fixedDist huffman.Coding[uint16]
)

func fixedTables() (huffman.Coding[uint16], huffman.Coding[uint16]) {
	fixedOnce.Do(func() {
		lengths := make([]int, 288)
		for i := 0; i < 144; i++ {
			lengths[i] = 8
		}
		for i := 144; i < 256; i++ {
			lengths[i] = 9
		}
		for i := 256; i < 280; i++ {
			lengths[i] = 7
		}
		for i := 280; i < 288; i++ {
			lengths[i] = 8
		}
		fixedLit, _ = huffman.FromLengths(lengths, symSlice(288))

		distLengths := make([]int, 32)
		for i := range distLengths {
			distLengths[i] = 5
		}
		fixedDist, _ = huffman.FromLengths(distLengths, symSlice(32))
	})
	return fixedLit, fixedDist
}

func symSlice(n int) []uint16 {
	s := make([]uint16, n)
	for i := range s {
		s[i] = uint16(i)
	}
	return s
}

var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

func readDynamicTrees(r *bitio.Reader) (huffman.Coding[uint16], huffman.Coding[uint16], error) {
	var zero huffman.Coding[uint16]

	hlitBits, err := r.ReadBits(5)
	if err != nil {
		return zero, zero, err
	}
	hlit := int(hlitBits) + 257

	hdistBits, err := r.ReadBits(5)
	if err != nil {
		return zero, zero, err
	}
	hdist := int(hdistBits) + 1

	hclenBits, err := r.ReadBits(4)
	if err != nil {
		return zero, zero, err
	}
	hclen := int(hclenBits) + 4

	clLengths := make([]int, 19)
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return zero, zero, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}

	clSyms := make([]int, 19)
	for i := range clSyms {
		clSyms[i] = i
	}
	clCoding, err := huffman.FromLengths(clLengths, clSyms)
	if err != nil {
		return zero, zero, err
	}

	total := hlit + hdist
	allLengths := make([]int, total)
	for i := 0; i < total; {
		sym, err := clCoding.ReadSymbol(r)
		if err != nil {
			return zero, zero, err
		}
		tok, err := classifyTreeCode(sym)
		if err != nil {
			return zero, zero, err
		}
		switch tok.Kind {
		case TreeCodeLength:
			allLengths[i] = tok.Value
			i++
		case TreeCodeCopyPrev:
			if i == 0 {
				return zero, zero, decodeerr.ErrInvalidTreeEncoding
			}
			extra, err := r.ReadBits(2)
			if err != nil {
				return zero, zero, err
			}
			repeat := int(extra) + 3
			if i+repeat > total {
				return zero, zero, decodeerr.ErrInvalidTreeEncoding
			}
			prev := allLengths[i-1]
			for j := 0; j < repeat; j++ {
				allLengths[i] = prev
				i++
			}
		case TreeCodeRepeatZero3:
			extra, err := r.ReadBits(3)
			if err != nil {
				return zero, zero, err
			}
			repeat := int(extra) + 3
			if i+repeat > total {
				return zero, zero, decodeerr.ErrInvalidTreeEncoding
			}
			i += repeat
		case TreeCodeRepeatZero7:
			extra, err := r.ReadBits(7)
			if err != nil {
				return zero, zero, err
			}
			repeat := int(extra) + 11
			if i+repeat > total {
				return zero, zero, decodeerr.ErrInvalidTreeEncoding
			}
			i += repeat
		}
	}

	litCoding, err := huffman.FromLengths(allLengths[:hlit], symSlice(hlit))
	if err != nil {
		return zero, zero, err
	}
	distCoding, err := huffman.FromLengths(allLengths[hlit:], symSlice(hdist))
	if err != nil {
		return zero, zero, err
	}
	return litCoding, distCoding, nil
}
