package bitio

import (
	"bufio"
	"bytes"
	"testing"
)

func TestReadBitsLSBFirst(t *testing.T) {
	// 0b00000001 0b00000010 0b00000000: first byte's bit 0 is 1, the rest
	// are 0; reading 3 bits then 5 more should reproduce the same byte, and
	// the following 9 bits span the second byte and bit 0 of the third.
	r := NewReader(bufio.NewReader(bytes.NewReader([]byte{0b00000001, 0b00000010, 0b00000000})))

	v, err := r.ReadBits(3)
	if err != nil {
		t.Fatalf("ReadBits(3): %v", err)
	}
	if v != 0b001 {
		t.Fatalf("ReadBits(3) = %#b, want 0b001", v)
	}

	v, err = r.ReadBits(5)
	if err != nil {
		t.Fatalf("ReadBits(5): %v", err)
	}
	if v != 0 {
		t.Fatalf("ReadBits(5) = %#b, want 0", v)
	}

	v, err = r.ReadBits(9)
	if err != nil {
		t.Fatalf("ReadBits(9): %v", err)
	}
	if v != 0b000000010 {
		t.Fatalf("ReadBits(9) = %#b, want 0b000000010", v)
	}
}

func TestReadBitsSplitEquivalentToWholeRead(t *testing.T) {
	data := []byte{0xA5, 0x3C, 0xF0, 0x0F}

	whole := NewReader(bufio.NewReader(bytes.NewReader(data)))
	wantAll, err := whole.ReadBits(24)
	if err != nil {
		t.Fatalf("whole ReadBits: %v", err)
	}

	split := NewReader(bufio.NewReader(bytes.NewReader(data)))
	lo, err := split.ReadBits(9)
	if err != nil {
		t.Fatalf("split ReadBits(9): %v", err)
	}
	hi, err := split.ReadBits(15)
	if err != nil {
		t.Fatalf("split ReadBits(15): %v", err)
	}
	gotAll := lo | (hi << 9)

	if gotAll != wantAll {
		t.Fatalf("split reads = %#x, want %#x", gotAll, wantAll)
	}
}

func TestAlignToByteDiscardsResidualBits(t *testing.T) {
	r := NewReader(bufio.NewReader(bytes.NewReader([]byte{0xFF, 0x42})))

	if _, err := r.ReadBits(3); err != nil {
		t.Fatalf("ReadBits(3): %v", err)
	}
	r.AlignToByte()

	b, err := r.ReadAlignedByte()
	if err != nil {
		t.Fatalf("ReadAlignedByte: %v", err)
	}
	if b != 0x42 {
		t.Fatalf("ReadAlignedByte = %#x, want 0x42", b)
	}
}

func TestReadBitsUnexpectedEOF(t *testing.T) {
	r := NewReader(bufio.NewReader(bytes.NewReader(nil)))
	if _, err := r.ReadBits(1); err == nil {
		t.Fatalf("expected error reading from empty stream")
	}
}
