package spz

// CoordinateSystem identifies one of the 8 axis-handedness combinations a
// splat cloud's positions, rotations, and SH coefficients can be expressed
// in, or the Unspecified sentinel meaning "no conversion requested."
//
// Each concrete value encodes three bits: x (Left=0/Right=1), y
// (Down=0/Up=1), z (Back=0/Front=1). RUB is the canonical internal frame
// used by Packed/Cloud after decode; RDF is the PLY convention; LUF is
// GLB's; RUF is Unity's.
type CoordinateSystem int8

const (
	Unspecified CoordinateSystem = -1

	LDB CoordinateSystem = 0 // left,  down, back
	LDF CoordinateSystem = 1 // left,  down, front
	LUB CoordinateSystem = 2 // left,  up,   back
	LUF CoordinateSystem = 3 // left,  up,   front
	RDB CoordinateSystem = 4 // right, down, back
	RDF CoordinateSystem = 5 // right, down, front
	RUB CoordinateSystem = 6 // right, up,   back
	RUF CoordinateSystem = 7 // right, up,   front
)

func (c CoordinateSystem) bits() (x, y, z int8) {
	v := int8(c)
	return (v >> 2) & 1, (v >> 1) & 1, v & 1
}

// axisSigns returns the per-axis flip multipliers (flipP in spec §4.2) for
// converting from src to dst. A +1 means the axis matches (no flip); -1
// means it needs to be mirrored.
func axisSigns(src, dst CoordinateSystem) (sx, sy, sz float32) {
	sxb, syb, szb := src.bits()
	dxb, dyb, dzb := dst.bits()
	sign := func(a, b int8) float32 {
		if a == b {
			return 1
		}
		return -1
	}
	return sign(sxb, dxb), sign(syb, dyb), sign(szb, dzb)
}

// shFlipTable gives the parity of each SH basis function (indices 0..14,
// covering degree 1 through degree 3) under the single-axis reflections
// named in the coordinate algebra. sx, sy, sz are the per-axis flip signs;
// the product for each index is the sign the coefficient triple at that
// index must be multiplied by.
func shFlipTable(sx, sy, sz float32) [15]float32 {
	return [15]float32{
		sy,             // 0
		sz,             // 1
		sx,             // 2
		sx * sy,        // 3
		sy * sz,        // 4
		1,              // 5
		sx * sz,        // 6
		1,              // 7
		sy,             // 8
		sx * sy * sz,   // 9
		sy,             // 10
		sz,             // 11
		sx,             // 12
		sz,             // 13
		sx,             // 14
	}
}

// applyCoordinateFlip mutates c in place, flipping positions, rotation
// (x,y,z) components, and SH coefficient triples according to the given
// per-axis signs. w is never flipped. See DESIGN.md for the resolution of
// the flipQ component ordering (sx*sz, sy*sz, sx*sy) against an apparently
// transposed statement of the same formula elsewhere.
func applyCoordinateFlip(c *Cloud, sx, sy, sz float32) {
	n := int(c.NumPoints)

	for i := 0; i < n; i++ {
		c.Positions[3*i+0] *= sx
		c.Positions[3*i+1] *= sy
		c.Positions[3*i+2] *= sz
	}

	qx, qy, qz := sx*sz, sy*sz, sx*sy
	for i := 0; i < n; i++ {
		c.Rotations[4*i+0] *= qx
		c.Rotations[4*i+1] *= qy
		c.Rotations[4*i+2] *= qz
	}

	dim := shDim(c.ShDegree)
	if dim == 0 || len(c.Sh) == 0 {
		return
	}
	flips := shFlipTable(sx, sy, sz)
	for i := 0; i < n; i++ {
		base := i * dim * 3
		for j := 0; j < dim; j++ {
			f := flips[j]
			if f == 1 {
				continue
			}
			off := base + 3*j
			c.Sh[off+0] *= f
			c.Sh[off+1] *= f
			c.Sh[off+2] *= f
		}
	}
}

// Convert transforms c in place from coordinate system src to dst. If
// either is Unspecified, Convert is a no-op.
func Convert(c *Cloud, src, dst CoordinateSystem) {
	if src == Unspecified || dst == Unspecified || src == dst {
		return
	}
	sx, sy, sz := axisSigns(src, dst)
	applyCoordinateFlip(c, sx, sy, sz)
}
