package gzheader

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/jnsgr/degzip/internal/decodeerr"
)

func TestReadHeaderParsesNameAndComment(t *testing.T) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		t.Fatalf("gzip.NewWriterLevel: %v", err)
	}
	gw.Name = "foo.txt"
	gw.Comment = "a test fixture"
	if _, err := gw.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	hdr, err := ReadHeader(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if string(hdr.Name) != "foo.txt" {
		t.Fatalf("Name = %q, want %q", hdr.Name, "foo.txt")
	}
	if string(hdr.Comment) != "a test fixture" {
		t.Fatalf("Comment = %q, want %q", hdr.Comment, "a test fixture")
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x08, 0x00, 0, 0, 0, 0, 0, 0xff}
	if _, err := ReadHeader(bufio.NewReader(bytes.NewReader(raw))); !errors.Is(err, decodeerr.ErrBadMagic) {
		t.Fatalf("ReadHeader error = %v, want ErrBadMagic", err)
	}
}

func TestReadHeaderRejectsUnsupportedMethod(t *testing.T) {
	raw := []byte{0x1f, 0x8b, 0x09, 0x00, 0, 0, 0, 0, 0, 0xff}
	if _, err := ReadHeader(bufio.NewReader(bytes.NewReader(raw))); !errors.Is(err, decodeerr.ErrUnsupportedMethod) {
		t.Fatalf("ReadHeader error = %v, want ErrUnsupportedMethod", err)
	}
}

func TestReadHeaderValidatesHeaderCRC16(t *testing.T) {
	fixed := []byte{0x1f, 0x8b, 0x08, 0x02, 0, 0, 0, 0, 0, 0xff}
	sum := crc32.ChecksumIEEE(fixed)
	crc16 := []byte{byte(sum), byte(sum >> 8)}

	good := append(append([]byte{}, fixed...), crc16...)
	hdr, err := ReadHeader(bufio.NewReader(bytes.NewReader(good)))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if !hdr.HasCRC {
		t.Fatalf("HasCRC = false, want true")
	}

	bad := append(append([]byte{}, fixed...), crc16[0]^0x01, crc16[1])
	if _, err := ReadHeader(bufio.NewReader(bytes.NewReader(bad))); !errors.Is(err, decodeerr.ErrHeaderCRC) {
		t.Fatalf("ReadHeader error = %v, want ErrHeaderCRC", err)
	}
}

func TestAtEOF(t *testing.T) {
	if !AtEOF(bufio.NewReader(bytes.NewReader(nil))) {
		t.Fatalf("AtEOF(empty) = false, want true")
	}
	if AtEOF(bufio.NewReader(bytes.NewReader([]byte{0x00}))) {
		t.Fatalf("AtEOF(non-empty) = true, want false")
	}
}

func TestReadFooterRoundTrip(t *testing.T) {
	raw := []byte{0x86, 0xa6, 0x10, 0x36, 0x05, 0x00, 0x00, 0x00}
	footer, err := ReadFooter(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadFooter: %v", err)
	}
	if footer.CRC32 != 0x3610a686 {
		t.Fatalf("CRC32 = %#x, want 0x3610a686", footer.CRC32)
	}
	if footer.ISize != 5 {
		t.Fatalf("ISize = %d, want 5", footer.ISize)
	}
}
