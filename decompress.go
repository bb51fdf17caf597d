// Package degzip implements a streaming decompressor for the gzip
// container format (RFC 1952) wrapping one or more DEFLATE-compressed
// payloads (RFC 1951).
package degzip

import (
	"bufio"
	"fmt"
	"io"

	"github.com/coreos/pkg/capnslog"

	"github.com/jnsgr/degzip/internal/bitio"
	"github.com/jnsgr/degzip/internal/decodeerr"
	"github.com/jnsgr/degzip/internal/deflate"
	"github.com/jnsgr/degzip/internal/gzheader"
	"github.com/jnsgr/degzip/internal/window"
)

var plog = capnslog.NewPackageLogger("github.com/jnsgr/degzip", "degzip")

// Sentinel errors surfaced by Decompress, re-exported from the internal
// stage that detects them so callers never need to import an internal
// package.
var (
	ErrBadMagic            = decodeerr.ErrBadMagic
	ErrUnsupportedMethod   = decodeerr.ErrUnsupportedMethod
	ErrHeaderCRC           = decodeerr.ErrHeaderCRC
	ErrReservedBlockType   = decodeerr.ErrReservedBlockType
	ErrBadStoredLength     = decodeerr.ErrBadStoredLength
	ErrInvalidHuffmanCode  = decodeerr.ErrInvalidHuffmanCode
	ErrInvalidTreeEncoding = decodeerr.ErrInvalidTreeEncoding
	ErrInvalidDistance     = decodeerr.ErrInvalidDistance
	ErrDataCRC32           = decodeerr.ErrDataCRC32
	ErrDataSize            = decodeerr.ErrDataSize
)

// MemberInfo reports the parsed envelope of one decoded gzip member,
// excluding the decompressed payload itself.
type MemberInfo struct {
	ModTime uint32
	Name    []byte
	Comment []byte
	IsText  bool
}

// Decompress reads a concatenation of one or more gzip members from r
// and writes their decompressed payloads, in order, to w. Each member's
// header CRC-16 (if present) and trailing CRC-32/ISIZE are validated;
// the first failure aborts decoding and is returned.
func Decompress(r io.Reader, w io.Writer) error {
	_, err := DecompressMembers(r, w, nil)
	return err
}

// DecompressMembers behaves like Decompress, additionally invoking
// onMember (if non-nil) after each member's envelope is parsed but
// before its payload is decoded. It returns the number of members
// successfully processed.
func DecompressMembers(r io.Reader, w io.Writer, onMember func(MemberInfo)) (int, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	sink := window.NewSink(w)

	members := 0
	for {
		if gzheader.AtEOF(br) {
			return members, nil
		}

		hdr, err := gzheader.ReadHeader(br)
		if err != nil {
			return members, fmt.Errorf("member %d: header: %w", members, err)
		}
		plog.Debugf("member %d: modtime=%d name=%q", members, hdr.ModTime, hdr.Name)

		if onMember != nil {
			onMember(MemberInfo{ModTime: hdr.ModTime, Name: hdr.Name, Comment: hdr.Comment, IsText: hdr.IsText})
		}

		sink.Reset()
		if err := decodeMemberBody(br, sink); err != nil {
			return members, fmt.Errorf("member %d: %w", members, err)
		}

		footer, err := gzheader.ReadFooter(br)
		if err != nil {
			return members, fmt.Errorf("member %d: trailer: %w", members, err)
		}

		if uint32(sink.ByteCount()) != footer.ISize {
			return members, fmt.Errorf("member %d: %w", members, decodeerr.ErrDataSize)
		}
		if sink.CRC32() != footer.CRC32 {
			return members, fmt.Errorf("member %d: %w", members, decodeerr.ErrDataCRC32)
		}

		members++
		plog.Debugf("member %d: ok, %d bytes", members-1, sink.ByteCount())
	}
}

// decodeMemberBody decodes DEFLATE blocks from br until a final block is
// reached, writing their output to sink.
func decodeMemberBody(br *bufio.Reader, sink *window.Sink) error {
	bits := bitio.NewReader(br)
	for {
		hdr, err := deflate.ReadBlockHeader(bits)
		if err != nil {
			return err
		}
		if err := deflate.DecodeBlock(bits, sink, hdr); err != nil {
			return err
		}
		if hdr.Final {
			bits.AlignToByte()
			return nil
		}
	}
}
