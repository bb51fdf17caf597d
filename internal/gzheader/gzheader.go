// Package gzheader parses the RFC 1952 gzip member envelope: the fixed
// 10-byte header and its optional FEXTRA/FNAME/FCOMMENT/FHCRC sections,
// and the 8-byte trailer following a member's DEFLATE payload.
package gzheader

import (
	"bufio"
	"hash/crc32"
	"io"

	"github.com/jnsgr/degzip/internal/decodeerr"
)

const (
	flagText = 1 << iota
	flagHCRC
	flagExtra
	flagName
	flagComment
)

// DeflateMethod is the only compression method byte this decoder
// accepts.
const DeflateMethod = 8

// Header is a parsed gzip member header.
type Header struct {
	ModTime    uint32
	ExtraFlags byte
	OS         byte
	Extra      []byte
	Name       []byte
	Comment    []byte
	HasCRC     bool
	IsText     bool
}

// Footer is the 8-byte trailer following a member's DEFLATE payload.
type Footer struct {
	CRC32 uint32
	ISize uint32
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// AtEOF reports whether r has no further bytes to read, the signal the
// driver uses to recognize the clean end of a multi-member stream.
func AtEOF(r *bufio.Reader) bool {
	_, err := r.Peek(1)
	return err != nil
}

// ReadHeader reads one gzip member header from r.
func ReadHeader(r *bufio.Reader) (Header, error) {
	var fixed [10]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, noEOF(err)
	}
	if fixed[0] != 0x1f || fixed[1] != 0x8b {
		return Header{}, decodeerr.ErrBadMagic
	}
	if fixed[2] != DeflateMethod {
		return Header{}, decodeerr.ErrUnsupportedMethod
	}

	crc := crc32.Update(0, crc32.IEEETable, fixed[:])

	flags := fixed[3]
	hdr := Header{
		ModTime:    uint32(fixed[4]) | uint32(fixed[5])<<8 | uint32(fixed[6])<<16 | uint32(fixed[7])<<24,
		ExtraFlags: fixed[8],
		OS:         fixed[9],
		HasCRC:     flags&flagHCRC != 0,
		IsText:     flags&flagText != 0,
	}

	if flags&flagExtra != 0 {
		var xlenBuf [2]byte
		if _, err := io.ReadFull(r, xlenBuf[:]); err != nil {
			return Header{}, noEOF(err)
		}
		crc = crc32.Update(crc, crc32.IEEETable, xlenBuf[:])

		xlen := int(xlenBuf[0]) | int(xlenBuf[1])<<8
		extra := make([]byte, xlen)
		if _, err := io.ReadFull(r, extra); err != nil {
			return Header{}, noEOF(err)
		}
		crc = crc32.Update(crc, crc32.IEEETable, extra)
		hdr.Extra = extra
	}

	if flags&flagName != 0 {
		name, newCRC, err := readCString(r, crc)
		if err != nil {
			return Header{}, err
		}
		hdr.Name, crc = name, newCRC
	}

	if flags&flagComment != 0 {
		comment, newCRC, err := readCString(r, crc)
		if err != nil {
			return Header{}, err
		}
		hdr.Comment, crc = comment, newCRC
	}

	if flags&flagHCRC != 0 {
		var hcrcBuf [2]byte
		if _, err := io.ReadFull(r, hcrcBuf[:]); err != nil {
			return Header{}, noEOF(err)
		}
		want := uint16(hcrcBuf[0]) | uint16(hcrcBuf[1])<<8
		if got := uint16(crc); want != got {
			return Header{}, decodeerr.ErrHeaderCRC
		}
	}

	return hdr, nil
}

// readCString reads bytes up to and including the first NUL, returning
// everything before it. A raw byte slice is returned rather than a
// decoded string: RFC 1952 does not mandate an encoding for name and
// comment (ISO-8859-1 is conventional), so decoding is left to the
// caller rather than silently dropping bytes that fail a UTF-8 check.
func readCString(r *bufio.Reader, crc uint32) ([]byte, uint32, error) {
	b, err := r.ReadBytes(0x00)
	if err != nil {
		return nil, crc, noEOF(err)
	}
	crc = crc32.Update(crc, crc32.IEEETable, b)
	return b[:len(b)-1], crc, nil
}

// ReadFooter reads the 8-byte CRC32/ISIZE trailer following a member's
// DEFLATE payload.
func ReadFooter(r *bufio.Reader) (Footer, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Footer{}, noEOF(err)
	}
	return Footer{
		CRC32: uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24,
		ISize: uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24,
	}, nil
}
