package compression

import (
	"bytes"
	"testing"
)

func TestGzipHeaderBytes(t *testing.T) {
	out, err := Gzip([]byte("hello, splats"))
	if err != nil {
		t.Fatalf("Gzip() error = %v", err)
	}
	want := []byte{0x1f, 0x8b, 0x08, 0x00}
	if !bytes.Equal(out[:4], want) {
		t.Errorf("Gzip() header = % x, want % x", out[:4], want)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		[]byte("a"),
		bytes.Repeat([]byte("spz"), 1000),
		make([]byte, 1<<20),
	}

	for _, src := range tests {
		encoded, err := Gzip(src)
		if err != nil {
			t.Fatalf("Gzip(%d bytes) error = %v", len(src), err)
		}
		decoded, err := Gunzip(encoded)
		if err != nil {
			t.Fatalf("Gunzip() error = %v", err)
		}
		if !bytes.Equal(decoded, src) {
			t.Errorf("round trip mismatch for %d byte input", len(src))
		}
	}
}

func TestGzipTrailer(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog")
	encoded, err := Gzip(src)
	if err != nil {
		t.Fatalf("Gzip() error = %v", err)
	}

	// Last 8 bytes are CRC32 (LE) then ISIZE (LE).
	trailer := encoded[len(encoded)-8:]
	isize := uint32(trailer[4]) | uint32(trailer[5])<<8 | uint32(trailer[6])<<16 | uint32(trailer[7])<<24
	if int(isize) != len(src) {
		t.Errorf("ISIZE = %d, want %d", isize, len(src))
	}
}

func TestGunzipRejectsBadMagic(t *testing.T) {
	_, err := Gunzip([]byte{0x00, 0x00, 0x08, 0x00, 0, 0, 0, 0, 0, 0})
	if err == nil {
		t.Error("Gunzip() with bad magic should fail")
	}
}

func TestGunzipToleratesFname(t *testing.T) {
	src := []byte("named stream contents")
	encoded, err := Gzip(src)
	if err != nil {
		t.Fatalf("Gzip() error = %v", err)
	}

	// Re-flag the header to claim FNAME and splice a name in after the header.
	withName := make([]byte, 0, len(encoded)+8)
	withName = append(withName, encoded[:3]...)
	flags := encoded[3] | 0x08 // FNAME
	withName = append(withName, flags)
	withName = append(withName, encoded[4:10]...)
	withName = append(withName, []byte("name.bin\x00")...)
	withName = append(withName, encoded[10:]...)

	decoded, err := Gunzip(withName)
	if err != nil {
		t.Fatalf("Gunzip() with FNAME error = %v", err)
	}
	if !bytes.Equal(decoded, src) {
		t.Errorf("Gunzip() with FNAME = %q, want %q", decoded, src)
	}
}

func TestGunzipTruncatedHeader(t *testing.T) {
	_, err := Gunzip([]byte{0x1f, 0x8b})
	if err == nil {
		t.Error("Gunzip() with truncated header should fail")
	}
}
