// Package compression provides the gzip framing used to wrap a serialized
// SPZ container.
//
// SPZ files are a literal gzip stream: a fixed 10-byte header (no FNAME, no
// FEXTRA, MTIME zero), a raw DEFLATE body, and a trailing CRC32 plus
// uncompressed-size footer. This package writes that exact byte layout on
// encode and accepts any valid gzip stream (including ones produced by
// other encoders, with FNAME/FEXTRA/FCOMMENT extras) on decode.
package compression

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// Gzip framing errors.
var (
	ErrDecompression = errors.New("compression: gzip decompression failed")
	ErrCompression   = errors.New("compression: gzip compression failed")
)

// gzipHeader is the fixed 10-byte header this package always emits:
// magic (1f 8b), method (08 = deflate), flags (00), MTIME (00000000),
// XFL (00), OS (00 = unknown).
var gzipHeader = [10]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

const (
	gzipIDByte1  = 0x1f
	gzipIDByte2  = 0x8b
	gzipDeflate  = 8
	flagFTEXT    = 1 << 0
	flagFHCRC    = 1 << 1
	flagFEXTRA   = 1 << 2
	flagFNAME    = 1 << 3
	flagFCOMMENT = 1 << 4
)

// initialInflateBuffer is the starting capacity for the inflated output
// buffer. It grows as needed as io.Copy appends to the bytes.Buffer.
const initialInflateBuffer = 16 << 20 // 16 MiB

// flateWriterPool reuses raw-deflate writers to avoid reallocating the
// internal Huffman tables on every encode, mirroring the teacher's
// zlibWriterPool pattern for pixel-tile compression.
var flateWriterPool = sync.Pool{
	New: func() any {
		w, _ := flate.NewWriter(io.Discard, flate.DefaultCompression)
		return w
	},
}

// Gzip wraps src in the gzip frame described in the package doc: a fixed
// 10-byte header, a raw deflate body, and a CRC32+ISIZE trailer.
func Gzip(src []byte) ([]byte, error) {
	var body bytes.Buffer
	body.Grow(len(src)/2 + 64)

	fw := flateWriterPool.Get().(*flate.Writer)
	fw.Reset(&body)

	if _, err := fw.Write(src); err != nil {
		flateWriterPool.Put(fw)
		return nil, errors.Join(ErrCompression, err)
	}
	if err := fw.Close(); err != nil {
		flateWriterPool.Put(fw)
		return nil, errors.Join(ErrCompression, err)
	}
	flateWriterPool.Put(fw)

	out := make([]byte, 0, 10+body.Len()+8)
	out = append(out, gzipHeader[:]...)
	out = append(out, body.Bytes()...)

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(src))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(src)))
	out = append(out, trailer[:]...)

	return out, nil
}

// Gunzip inflates a gzip stream produced by Gzip, or by any other
// conformant gzip writer. FNAME/FEXTRA/FCOMMENT fields are tolerated and
// skipped. Inflation stops at the end of the deflate body; the trailing
// CRC32 and ISIZE are neither read nor verified against the inflated bytes.
func Gunzip(src []byte) ([]byte, error) {
	r := bytes.NewReader(src)

	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errors.Join(ErrDecompression, err)
	}
	if hdr[0] != gzipIDByte1 || hdr[1] != gzipIDByte2 {
		return nil, ErrDecompression
	}
	if hdr[2] != gzipDeflate {
		return nil, ErrDecompression
	}
	flg := hdr[3]

	if flg&flagFEXTRA != 0 {
		var xlenBuf [2]byte
		if _, err := io.ReadFull(r, xlenBuf[:]); err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
		xlen := binary.LittleEndian.Uint16(xlenBuf[:])
		if _, err := r.Seek(int64(xlen), io.SeekCurrent); err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
	}
	if flg&flagFNAME != 0 {
		if err := skipCString(r); err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
	}
	if flg&flagFCOMMENT != 0 {
		if err := skipCString(r); err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
	}
	if flg&flagFHCRC != 0 {
		if _, err := r.Seek(2, io.SeekCurrent); err != nil {
			return nil, errors.Join(ErrDecompression, err)
		}
	}

	fr := flate.NewReader(r)
	defer fr.Close()

	buf := bytes.NewBuffer(make([]byte, 0, initialInflateBuffer))
	if _, err := io.Copy(buf, fr); err != nil {
		return nil, errors.Join(ErrDecompression, err)
	}

	return buf.Bytes(), nil
}

func skipCString(r *bytes.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b == 0 {
			return nil
		}
	}
}
