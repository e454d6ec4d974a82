package spz

import (
	"math"

	"github.com/mrjoshuak/go-spz/half"
)

const (
	smallestThreeRange = 511 // 2^9 - 1
	invSqrt2            = 0.70710678118654752440
)

func cloneCloud(c Cloud) Cloud {
	out := c
	out.Positions = append([]float32(nil), c.Positions...)
	out.Scales = append([]float32(nil), c.Scales...)
	out.Rotations = append([]float32(nil), c.Rotations...)
	out.Alphas = append([]float32(nil), c.Alphas...)
	out.Colors = append([]float32(nil), c.Colors...)
	out.Sh = append([]float32(nil), c.Sh...)
	return out
}

// Pack quantizes c into its on-disk byte form. If source is not
// Unspecified, c is first converted to the canonical RUB frame (c itself
// is not mutated).
func Pack(c Cloud, source CoordinateSystem) (Packed, error) {
	if err := c.Validate(); err != nil {
		return Packed{}, err
	}

	working := cloneCloud(c)
	Convert(&working, source, RUB)

	n := int(working.NumPoints)
	dim := shDim(working.ShDegree)

	p := Packed{
		NumPoints:         working.NumPoints,
		ShDegree:          working.ShDegree,
		FractionalBits:    writerFractionalBits,
		Antialiased:       working.Antialiased,
		UsesFloat16:       false,
		UsesSmallestThree: true,
		Positions:         make([]byte, n*3*3),
		Alphas:            make([]byte, n),
		Colors:            make([]byte, n*3),
		Scales:            make([]byte, n*3),
		Rotations:         make([]byte, n*4),
		Sh:                make([]byte, n*dim*3),
	}

	scale := float32(int32(1) << writerFractionalBits)
	for i := 0; i < 3*n; i++ {
		packFixed24(p.Positions[3*i:3*i+3], working.Positions[i], scale)
	}

	for i := 0; i < 3*n; i++ {
		p.Scales[i] = toU8((finiteOr(working.Scales[i], 0) + 10) * 16)
	}

	for i := 0; i < n; i++ {
		x := finiteOr(working.Rotations[4*i+0], 0)
		y := finiteOr(working.Rotations[4*i+1], 0)
		z := finiteOr(working.Rotations[4*i+2], 0)
		w := finiteOr(working.Rotations[4*i+3], 1)
		packSmallestThree(p.Rotations[4*i:4*i+4], x, y, z, w)
	}

	for i := 0; i < n; i++ {
		p.Alphas[i] = toU8(sigmoid(working.Alphas[i]) * 255)
	}

	for i := 0; i < 3*n; i++ {
		p.Colors[i] = toU8(working.Colors[i]*colorScale*255 + 0.5*255)
	}

	for i := 0; i < n*dim; i++ {
		coeffInSplat := i % dim
		for ch := 0; ch < 3; ch++ {
			posInSplat := coeffInSplat*3 + ch
			idx := i*3 + ch
			p.Sh[idx] = quantizeSH(working.Sh[idx], shBucketBits(posInSplat))
		}
	}

	return p, nil
}

// Unpack dequantizes p into a Cloud. If target is not Unspecified, the
// result is converted from the canonical RUB frame to target.
func Unpack(p Packed, target CoordinateSystem) (Cloud, error) {
	if err := p.Validate(); err != nil {
		return Cloud{}, err
	}

	n := int(p.NumPoints)
	dim := shDim(p.ShDegree)

	c := Cloud{
		NumPoints:   p.NumPoints,
		ShDegree:    p.ShDegree,
		Antialiased: p.Antialiased,
		Positions:   make([]float32, 3*n),
		Scales:      make([]float32, 3*n),
		Rotations:   make([]float32, 4*n),
		Alphas:      make([]float32, n),
		Colors:      make([]float32, 3*n),
		Sh:          make([]float32, n*dim*3),
	}

	if p.UsesFloat16 {
		half.ConvertBytesToFloat32(c.Positions, p.Positions)
	} else {
		fracBits := p.FractionalBits
		scale := float32(int32(1) << fracBits)
		for i := 0; i < 3*n; i++ {
			c.Positions[i] = unpackFixed24(p.Positions[3*i:3*i+3]) / scale
		}
	}

	for i := 0; i < 3*n; i++ {
		c.Scales[i] = float32(p.Scales[i])/16 - 10
	}

	for i := 0; i < n; i++ {
		var x, y, z, w float32
		if p.UsesSmallestThree {
			x, y, z, w = unpackSmallestThree(p.Rotations[4*i : 4*i+4])
		} else {
			x, y, z, w = unpackRotationXYZ(p.Rotations[3*i : 3*i+3])
		}
		c.Rotations[4*i+0] = x
		c.Rotations[4*i+1] = y
		c.Rotations[4*i+2] = z
		c.Rotations[4*i+3] = w
	}

	for i := 0; i < n; i++ {
		c.Alphas[i] = invSigmoid(float32(p.Alphas[i]) / 255)
	}

	for i := 0; i < 3*n; i++ {
		c.Colors[i] = (float32(p.Colors[i])/255 - 0.5) / colorScale
	}

	for i := 0; i < n*dim*3; i++ {
		c.Sh[i] = unquantizeSH(p.Sh[i])
	}

	Convert(&c, RUB, target)
	return c, nil
}

func packFixed24(dst []byte, v, scale float32) {
	f := finiteOr(v, 0)
	r := int32(math.Round(float64(f) * float64(scale)))
	dst[0] = byte(r)
	dst[1] = byte(r >> 8)
	dst[2] = byte(r >> 16)
}

func unpackFixed24(src []byte) float32 {
	u := int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16
	u <<= 8
	u >>= 8 // sign-extend from bit 23
	return float32(u)
}

// packSmallestThree implements the 4-byte smallest-three quaternion
// encoding: the three non-largest components as signed 10-bit integers,
// plus the 2-bit index of the largest component.
func packSmallestThree(dst []byte, x, y, z, w float32) {
	comps := [4]float32{x, y, z, w}
	norm := float32(math.Sqrt(float64(x*x + y*y + z*z + w*w)))
	if norm == 0 {
		comps = [4]float32{0, 0, 0, 1}
		norm = 1
	}
	for i := range comps {
		comps[i] /= norm
	}

	largest := 0
	for i := 1; i < 4; i++ {
		if absF32(comps[i]) >= absF32(comps[largest]) {
			largest = i
		}
	}
	if comps[largest] < 0 {
		for i := range comps {
			comps[i] = -comps[i]
		}
	}

	var rest [3]float32
	j := 0
	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}
		rest[j] = comps[i]
		j++
	}

	v1 := quantize10(rest[0])
	v2 := quantize10(rest[1])
	v3 := quantize10(rest[2])
	l := uint16(largest)

	dst[0] = byte(v1 & 0xff)
	dst[1] = byte(((v1 >> 8) & 3) | ((v2 & 0x3f) << 2))
	dst[2] = byte(((v2 >> 6) & 0xf) | ((v3 & 0xf) << 4))
	dst[3] = byte(((v3>>4)&0x3f) | (l << 6))
}

func quantize10(x float32) uint16 {
	v := int32(math.Round(float64(x) / invSqrt2 * smallestThreeRange))
	v = clampI32(v, -smallestThreeRange, smallestThreeRange)
	return uint16(v) & 0x3ff
}

// unpackSmallestThree reverses packSmallestThree.
func unpackSmallestThree(src []byte) (x, y, z, w float32) {
	r0, r1, r2, r3 := src[0], src[1], src[2], src[3]

	v1 := uint16(r0) | uint16(r1&3)<<8
	v2 := uint16(r1>>2) | uint16(r2&0xf)<<6
	v3 := uint16(r2>>4) | uint16(r3&0x3f)<<4
	largest := r3 >> 6

	a := dequantize10(v1)
	b := dequantize10(v2)
	c := dequantize10(v3)

	var comps [4]float32
	rest := [3]float32{a, b, c}
	j := 0
	sumSquares := float32(0)
	for i := 0; i < 4; i++ {
		if i == int(largest) {
			continue
		}
		comps[i] = rest[j]
		sumSquares += rest[j] * rest[j]
		j++
	}
	comps[largest] = float32(math.Sqrt(math.Max(0, 1-float64(sumSquares))))

	return comps[0], comps[1], comps[2], comps[3]
}

func dequantize10(v uint16) float32 {
	signed := int16(v << 6) >> 6 // sign-extend from bit 9
	return float32(signed) / smallestThreeRange * invSqrt2
}

// unpackRotationXYZ decodes the legacy version 1/2 raw-byte quaternion
// encoding: three bytes map linearly to [-1,1], w is reconstructed
// non-negative from the unit-norm constraint.
func unpackRotationXYZ(src []byte) (x, y, z, w float32) {
	x = float32(src[0])/127.5 - 1
	y = float32(src[1])/127.5 - 1
	z = float32(src[2])/127.5 - 1
	w = float32(math.Sqrt(math.Max(0, 1-float64(x*x+y*y+z*z))))
	return
}

func absF32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
