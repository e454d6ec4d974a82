package spz

import (
	"github.com/mrjoshuak/go-spz/internal/xdr"
)

const magicSPZ = 0x5053474e

const (
	headerSize = 16

	writerVersion       = 3
	writerFractionalBits = 12
)

const flagAntialiased = 1 << 0

// header is the 16-byte little-endian container header described in the
// container layout.
type header struct {
	magic          uint32
	version        uint32
	numPoints      uint32
	shDegree       uint8
	fractionalBits uint8
	flags          uint8
	reserved       uint8
}

func parseHeader(r *xdr.Reader) (header, error) {
	var h header
	if r.Len() < headerSize {
		return h, newError(InvalidHeader, "buffer shorter than header")
	}
	magic, err := r.ReadUint32()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading magic", err)
	}
	if magic != magicSPZ {
		return h, newError(InvalidHeader, "bad magic")
	}
	version, err := r.ReadUint32()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading version", err)
	}
	numPoints, err := r.ReadUint32()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading num_points", err)
	}
	shDegree, err := r.ReadUint8()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading sh_degree", err)
	}
	fractionalBits, err := r.ReadUint8()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading fractional_bits", err)
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading flags", err)
	}
	reserved, err := r.ReadUint8()
	if err != nil {
		return h, wrapError(InvalidHeader, "reading reserved", err)
	}

	h = header{
		magic:          magic,
		version:        version,
		numPoints:      numPoints,
		shDegree:       shDegree,
		fractionalBits: fractionalBits,
		flags:          flags,
		reserved:       reserved,
	}

	if h.version < 1 || h.version > 3 {
		return h, newError(UnsupportedVersion, "version must be 1, 2, or 3")
	}
	if h.numPoints > maxPoints {
		return h, newError(TooManyPoints, "num_points exceeds maximum")
	}
	if h.shDegree > maxShDegree {
		return h, newError(UnsupportedShDegree, "sh_degree must be 0..3")
	}
	return h, nil
}

func writeHeader(w *xdr.BufferWriter, h header) {
	w.WriteUint32(h.magic)
	w.WriteUint32(h.version)
	w.WriteUint32(h.numPoints)
	w.WriteUint8(h.shDegree)
	w.WriteUint8(h.fractionalBits)
	w.WriteUint8(h.flags)
	w.WriteUint8(h.reserved)
}

// Deserialize parses a serialized Packed (header followed by the six
// fixed-order sections) out of buf. Trailing bytes beyond the last section
// are ignored.
func Deserialize(buf []byte) (Packed, error) {
	r := xdr.NewReader(buf)
	h, err := parseHeader(r)
	if err != nil {
		return Packed{}, err
	}

	p := Packed{
		NumPoints:         h.numPoints,
		ShDegree:          h.shDegree,
		FractionalBits:    h.fractionalBits,
		Antialiased:       h.flags&flagAntialiased != 0,
		UsesFloat16:       h.version == 1,
		UsesSmallestThree: h.version >= 3,
	}

	dim, ok := shDimOrInvalid(h.shDegree)
	if !ok {
		return Packed{}, newError(UnsupportedShDegree, "sh_degree must be 0..3")
	}
	n := int(h.numPoints)

	sizes := []struct {
		dst  *[]byte
		size int
	}{
		{&p.Positions, n * 3 * p.positionStride()},
		{&p.Alphas, n},
		{&p.Colors, n * 3},
		{&p.Scales, n * 3},
		{&p.Rotations, n * p.rotationStride()},
		{&p.Sh, n * dim * 3},
	}

	total := 0
	for _, s := range sizes {
		total += s.size
	}
	if r.Len() < total {
		return Packed{}, newError(InvalidData, "buffer shorter than sum of sections")
	}

	for _, s := range sizes {
		b, err := r.ReadBytes(s.size)
		if err != nil {
			return Packed{}, wrapError(InvalidData, "reading section", err)
		}
		*s.dst = b
	}

	return p, nil
}

// Serialize emits the header (always version 3, fractional_bits=12,
// smallest-three rotations) followed by the six sections in fixed order.
func Serialize(p Packed) []byte {
	flags := uint8(0)
	if p.Antialiased {
		flags |= flagAntialiased
	}
	h := header{
		magic:          magicSPZ,
		version:        writerVersion,
		numPoints:      p.NumPoints,
		shDegree:       p.ShDegree,
		fractionalBits: writerFractionalBits,
		flags:          flags,
		reserved:       0,
	}

	total := headerSize + len(p.Positions) + len(p.Alphas) + len(p.Colors) +
		len(p.Scales) + len(p.Rotations) + len(p.Sh)
	w := xdr.NewBufferWriter(total)
	writeHeader(w, h)
	w.WriteBytes(p.Positions)
	w.WriteBytes(p.Alphas)
	w.WriteBytes(p.Colors)
	w.WriteBytes(p.Scales)
	w.WriteBytes(p.Rotations)
	w.WriteBytes(p.Sh)
	return w.Bytes()
}
