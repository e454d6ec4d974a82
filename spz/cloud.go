package spz

import (
	"math"
	"sort"
)

// maxPoints is the largest num_points a container may declare. It exists to
// bound allocation when decoding an untrusted header.
const maxPoints = 10_000_000

// maxShDegree is the highest spherical-harmonics degree the format supports.
const maxShDegree = 3

// Cloud is a decoded Gaussian splat point cloud in float32 form, laid out
// as flat per-component slices (struct-of-arrays, matching the on-disk
// packed representation before quantization).
type Cloud struct {
	NumPoints uint32
	ShDegree  uint8
	Antialiased bool

	// Positions is length 3*NumPoints, (x,y,z) per splat.
	Positions []float32
	// Scales is length 3*NumPoints, stored as natural-log radii.
	Scales []float32
	// Rotations is length 4*NumPoints, (x,y,z,w) per splat.
	Rotations []float32
	// Alphas is length NumPoints, stored pre-sigmoid.
	Alphas []float32
	// Colors is length 3*NumPoints, the SH DC term per channel.
	Colors []float32
	// Sh is length NumPoints*shDim(ShDegree)*3, coefficient-major then
	// channel (all 3 channels of coefficient 0, then all 3 of coefficient
	// 1, ...).
	Sh []float32
}

// Validate checks that every slice in c has the length NumPoints and
// ShDegree imply, and that ShDegree is one of {0,1,2,3}.
func (c *Cloud) Validate() error {
	if _, ok := degreeForDim(shDim(c.ShDegree)); !ok {
		return newError(UnsupportedShDegree, "sh degree must be 0, 1, 2, or 3")
	}
	if c.NumPoints > maxPoints {
		return newError(TooManyPoints, "num_points exceeds maximum")
	}
	n := int(c.NumPoints)
	shLen := n * shDim(c.ShDegree) * 3

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"positions", len(c.Positions), 3 * n},
		{"scales", len(c.Scales), 3 * n},
		{"rotations", len(c.Rotations), 4 * n},
		{"alphas", len(c.Alphas), n},
		{"colors", len(c.Colors), 3 * n},
		{"sh", len(c.Sh), shLen},
	}
	for _, ck := range checks {
		if ck.got != ck.want {
			return newError(InvalidData, ck.name+" has wrong length for num_points/sh_degree")
		}
	}
	return nil
}

// RotateAroundX180 rotates every position and orientation in c 180 degrees
// about the X axis in place. This is the same per-axis sign flip as
// converting RUB to RDF (see Convert), worked out explicitly in
// DESIGN.md: flipP=(+1,-1,-1), and the derived flipQ and SH parities that
// fall out of the shared flip machinery.
func (c *Cloud) RotateAroundX180() {
	applyCoordinateFlip(c, 1, -1, -1)
}

// MedianVolume returns (4*pi/3) * exp(v_{N/2}) where v_i is the sum of the
// three log-scale components of splat i, sorted ascending, and N/2 uses
// truncating integer division. It returns 0.01 for an empty cloud.
func (c *Cloud) MedianVolume() float32 {
	n := int(c.NumPoints)
	if n == 0 {
		return 0.01
	}
	volumes := make([]float32, n)
	for i := 0; i < n; i++ {
		volumes[i] = c.Scales[3*i] + c.Scales[3*i+1] + c.Scales[3*i+2]
	}
	sort.Slice(volumes, func(i, j int) bool { return volumes[i] < volumes[j] })

	median := volumes[n/2]
	return float32(4.0 / 3.0 * math.Pi * math.Exp(float64(median)))
}
