// Package window implements the output side of a DEFLATE/gzip member: a
// 32 KiB sliding-window history used to resolve LZ77 back-references,
// paired with the running CRC32 and byte count checked against a
// member's trailer.
package window

import (
	"hash/crc32"
	"io"

	"github.com/jnsgr/degzip/internal/decodeerr"
)

// historySize is the maximum back-reference distance DEFLATE allows.
const historySize = 32768

// Sink accumulates decompressed bytes, forwarding them to an underlying
// io.Writer while keeping enough history to satisfy back-references and
// enough running state to verify a member's trailing CRC32 and size.
type Sink struct {
	w         io.Writer
	ring      [historySize]byte
	pos       int
	byteCount uint64
	crc       uint32
}

// NewSink wraps w, the destination for decompressed bytes.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// WriteByte appends a single literal byte.
func (s *Sink) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// Write forwards p to the underlying writer, then updates the history
// ring, CRC32, and byte count for exactly the bytes the writer accepted
// — a short write without an error is unusual for a conforming
// io.Writer, but the tracking state must reflect reality either way.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if n > 0 {
		accepted := p[:n]
		for _, b := range accepted {
			s.ring[s.pos] = b
			s.pos++
			if s.pos == historySize {
				s.pos = 0
			}
		}
		s.crc = crc32.Update(s.crc, crc32.IEEETable, accepted)
		s.byteCount += uint64(n)
	}
	return n, err
}

// CopyPrevious copies length bytes starting distance bytes back in the
// output stream, as DEFLATE back-references do. distance may be smaller
// than length, in which case the copy is periodic: bytes written earlier
// in this very call become part of the source material for bytes written
// later in it. Indexing the read and write cursors into the ring
// independently, both advancing one byte per iteration, keeps the
// distance between them constant and handles that overlap correctly.
func (s *Sink) CopyPrevious(distance, length int) error {
	if distance <= 0 || distance > historySize || uint64(distance) > s.byteCount {
		return decodeerr.ErrInvalidDistance
	}

	readIdx := s.pos - distance
	if readIdx < 0 {
		readIdx += historySize
	}

	for i := 0; i < length; i++ {
		b := s.ring[readIdx]
		if err := s.WriteByte(b); err != nil {
			return err
		}
		readIdx++
		if readIdx == historySize {
			readIdx = 0
		}
	}
	return nil
}

// ByteCount returns the number of bytes written since the last Reset.
func (s *Sink) ByteCount() uint64 {
	return s.byteCount
}

// CRC32 returns the running CRC32 of all bytes written since the last
// Reset.
func (s *Sink) CRC32() uint32 {
	return s.crc
}

// Reset clears the history, CRC32, and byte count, as required between
// independent gzip members in a concatenated stream. It does not reset
// the underlying writer.
func (s *Sink) Reset() {
	s.pos = 0
	s.byteCount = 0
	s.crc = 0
	s.ring = [historySize]byte{}
}
