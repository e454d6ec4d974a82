package spz

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxPlyVertices = 10 * (1 << 20)

// plyProperty is one "property float <name>" declaration, in the order it
// appeared in the header; that order is also the binary field order.
type plyProperty struct {
	name string
}

type plyHeader struct {
	numVertices int
	properties  []plyProperty
}

// parsePlyHeader reads the ASCII header from data, stopping after the
// end_header line, and returns the header plus the byte offset where the
// binary payload begins.
func parsePlyHeader(data []byte) (plyHeader, int, error) {
	var h plyHeader

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	offset := 0
	sawMagic := false
	sawFormat := false
	sawVertexElement := false

	for scanner.Scan() {
		line := scanner.Text()
		offset += len(line) + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)

		switch {
		case !sawMagic:
			if fields[0] != "ply" {
				return h, 0, newError(InvalidFormat, "missing ply magic line")
			}
			sawMagic = true
		case fields[0] == "comment":
			continue
		case fields[0] == "format":
			if len(fields) != 3 || fields[1] != "binary_little_endian" || fields[2] != "1.0" {
				return h, 0, newError(InvalidFormat, "unsupported format, only binary_little_endian 1.0 is supported")
			}
			sawFormat = true
		case fields[0] == "element":
			if len(fields) != 3 {
				return h, 0, newError(InvalidFormat, "malformed element line")
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return h, 0, wrapError(InvalidFormat, "element count", err)
			}
			if fields[1] == "vertex" {
				if count <= 0 || count > maxPlyVertices {
					return h, 0, newError(InvalidFormat, "element vertex count out of range")
				}
				h.numVertices = count
				sawVertexElement = true
			}
		case fields[0] == "property":
			if len(fields) != 3 {
				return h, 0, newError(InvalidFormat, "malformed property line")
			}
			if fields[1] != "float" {
				return h, 0, newError(InvalidFormat, "only float properties are supported")
			}
			if sawVertexElement {
				h.properties = append(h.properties, plyProperty{name: fields[2]})
			}
		case trimmed == "end_header":
			if !sawFormat {
				return h, 0, newError(InvalidFormat, "missing format line")
			}
			if !sawVertexElement {
				return h, 0, newError(InvalidFormat, "missing vertex element")
			}
			return h, offset, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return h, 0, wrapError(InvalidFormat, "scanning header", err)
	}
	return h, 0, newError(InvalidFormat, "missing end_header")
}

func (h plyHeader) indexOf(name string) (int, bool) {
	for i, p := range h.properties {
		if p.name == name {
			return i, true
		}
	}
	return -1, false
}

// shRestDim returns the count K of consecutive f_rest_0..f_rest_{K-1}
// properties present in h, starting at 0.
func (h plyHeader) shRestDim() int {
	k := 0
	for {
		if _, ok := h.indexOf(fmt.Sprintf("f_rest_%d", k)); !ok {
			return k
		}
		k++
	}
}

// DecodePLY parses a binary_little_endian 1.0 PLY buffer into a Cloud. The
// decoded cloud is in the PLY convention (RDF) unless target is given, in
// which case it is converted from RDF to target.
func DecodePLY(data []byte, target CoordinateSystem) (Cloud, error) {
	h, offset, err := parsePlyHeader(data)
	if err != nil {
		return Cloud{}, err
	}

	required := [][]string{
		{"x", "y", "z"},
		{"scale_0", "scale_1", "scale_2"},
		{"rot_0", "rot_1", "rot_2", "rot_3"},
		{"opacity"},
		{"f_dc_0", "f_dc_1", "f_dc_2"},
	}
	for _, group := range required {
		for _, name := range group {
			if _, ok := h.indexOf(name); !ok {
				return Cloud{}, newError(InvalidFormat, "missing required property "+name)
			}
		}
	}

	shRestDim := h.shRestDim()
	if shRestDim%3 != 0 {
		return Cloud{}, newError(InvalidFormat, "f_rest_* count is not a multiple of 3")
	}
	shDimPerChannel := shRestDim / 3
	shDegree, ok := degreeForDim(shDimPerChannel)
	if !ok {
		return Cloud{}, newError(InvalidFormat, "f_rest_* count does not match a supported sh degree")
	}

	n := h.numVertices
	stride := len(h.properties)
	payload := data[offset:]
	if len(payload) < n*stride*4 {
		return Cloud{}, newError(InvalidData, "payload shorter than header declares")
	}

	idx := func(name string) int {
		i, _ := h.indexOf(name)
		return i
	}
	xi, yi, zi := idx("x"), idx("y"), idx("z")
	s0, s1, s2 := idx("scale_0"), idx("scale_1"), idx("scale_2")
	rx, ry, rz, rw := idx("rot_1"), idx("rot_2"), idx("rot_3"), idx("rot_0")
	op := idx("opacity")
	c0, c1, c2 := idx("f_dc_0"), idx("f_dc_1"), idx("f_dc_2")

	restIdx := make([]int, shRestDim)
	for i := 0; i < shRestDim; i++ {
		restIdx[i] = idx(fmt.Sprintf("f_rest_%d", i))
	}

	c := Cloud{
		NumPoints: uint32(n),
		ShDegree:  shDegree,
		Positions: make([]float32, 3*n),
		Scales:    make([]float32, 3*n),
		Rotations: make([]float32, 4*n),
		Alphas:    make([]float32, n),
		Colors:    make([]float32, 3*n),
		Sh:        make([]float32, n*shDimPerChannel*3),
	}

	readFloat := func(vertex, prop int) float32 {
		o := (vertex*stride + prop) * 4
		bits := uint32(payload[o]) | uint32(payload[o+1])<<8 | uint32(payload[o+2])<<16 | uint32(payload[o+3])<<24
		return math.Float32frombits(bits)
	}

	for v := 0; v < n; v++ {
		c.Positions[3*v+0] = readFloat(v, xi)
		c.Positions[3*v+1] = readFloat(v, yi)
		c.Positions[3*v+2] = readFloat(v, zi)

		c.Scales[3*v+0] = readFloat(v, s0)
		c.Scales[3*v+1] = readFloat(v, s1)
		c.Scales[3*v+2] = readFloat(v, s2)

		c.Rotations[4*v+0] = readFloat(v, rx)
		c.Rotations[4*v+1] = readFloat(v, ry)
		c.Rotations[4*v+2] = readFloat(v, rz)
		c.Rotations[4*v+3] = readFloat(v, rw)

		c.Alphas[v] = readFloat(v, op)

		c.Colors[3*v+0] = readFloat(v, c0)
		c.Colors[3*v+1] = readFloat(v, c1)
		c.Colors[3*v+2] = readFloat(v, c2)

		// PLY is channel-major (R's coefficients, then G's, then B's);
		// internal layout is coefficient-major with channel inner.
		for coeff := 0; coeff < shDimPerChannel; coeff++ {
			base := v*shDimPerChannel*3 + coeff*3
			c.Sh[base+0] = readFloat(v, restIdx[coeff])
			c.Sh[base+1] = readFloat(v, restIdx[shDimPerChannel+coeff])
			c.Sh[base+2] = readFloat(v, restIdx[2*shDimPerChannel+coeff])
		}
	}

	Convert(&c, RDF, target)
	return c, nil
}

// EncodePLY serializes cloud as a binary_little_endian 1.0 PLY buffer,
// converting from source to RDF first unless source is Unspecified.
func EncodePLY(cloud Cloud, source CoordinateSystem) ([]byte, error) {
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	c := cloneCloud(cloud)
	Convert(&c, source, RDF)

	n := int(c.NumPoints)
	shDimPerChannel := shDim(c.ShDegree)

	var header bytes.Buffer
	header.WriteString("ply\n")
	header.WriteString("format binary_little_endian 1.0\n")
	fmt.Fprintf(&header, "element vertex %d\n", n)
	for _, name := range []string{"x", "y", "z", "nx", "ny", "nz", "f_dc_0", "f_dc_1", "f_dc_2"} {
		fmt.Fprintf(&header, "property float %s\n", name)
	}
	for i := 0; i < shDimPerChannel*3; i++ {
		fmt.Fprintf(&header, "property float f_rest_%d\n", i)
	}
	for _, name := range []string{"opacity", "scale_0", "scale_1", "scale_2", "rot_0", "rot_1", "rot_2", "rot_3"} {
		fmt.Fprintf(&header, "property float %s\n", name)
	}
	header.WriteString("end_header\n")

	stride := 9 + shDimPerChannel*3 + 8
	body := make([]byte, n*stride*4)

	writeFloat := func(off int, v float32) {
		bits := math.Float32bits(v)
		body[off] = byte(bits)
		body[off+1] = byte(bits >> 8)
		body[off+2] = byte(bits >> 16)
		body[off+3] = byte(bits >> 24)
	}

	for v := 0; v < n; v++ {
		o := v * stride * 4
		writeFloat(o+0, c.Positions[3*v+0])
		writeFloat(o+4, c.Positions[3*v+1])
		writeFloat(o+8, c.Positions[3*v+2])
		writeFloat(o+12, 0)
		writeFloat(o+16, 0)
		writeFloat(o+20, 0)
		writeFloat(o+24, c.Colors[3*v+0])
		writeFloat(o+28, c.Colors[3*v+1])
		writeFloat(o+32, c.Colors[3*v+2])

		restBase := o + 36
		for coeff := 0; coeff < shDimPerChannel; coeff++ {
			base := v*shDimPerChannel*3 + coeff*3
			writeFloat(restBase+coeff*4, c.Sh[base+0])
			writeFloat(restBase+(shDimPerChannel+coeff)*4, c.Sh[base+1])
			writeFloat(restBase+(2*shDimPerChannel+coeff)*4, c.Sh[base+2])
		}

		tailBase := restBase + shDimPerChannel*3*4
		writeFloat(tailBase+0, c.Alphas[v])
		writeFloat(tailBase+4, c.Scales[3*v+0])
		writeFloat(tailBase+8, c.Scales[3*v+1])
		writeFloat(tailBase+12, c.Scales[3*v+2])
		writeFloat(tailBase+16, c.Rotations[4*v+3]) // rot_0 = w
		writeFloat(tailBase+20, c.Rotations[4*v+0]) // rot_1 = x
		writeFloat(tailBase+24, c.Rotations[4*v+1]) // rot_2 = y
		writeFloat(tailBase+28, c.Rotations[4*v+2]) // rot_3 = z
	}

	out := make([]byte, 0, header.Len()+len(body))
	out = append(out, header.Bytes()...)
	out = append(out, body...)
	return out, nil
}
