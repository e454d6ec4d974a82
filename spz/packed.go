package spz

// Packed is the byte-level representation of a splat cloud, mirroring the
// section layout written to and read from an SPZ container (minus the
// 16-byte header, which Serialize and Deserialize read and write).
type Packed struct {
	NumPoints         uint32
	ShDegree          uint8
	FractionalBits    uint8
	Antialiased       bool
	UsesFloat16       bool
	UsesSmallestThree bool

	// Positions is N*3*(2 if UsesFloat16 else 3) bytes.
	Positions []byte
	// Alphas is N bytes.
	Alphas []byte
	// Colors is N*3 bytes.
	Colors []byte
	// Scales is N*3 bytes.
	Scales []byte
	// Rotations is N*(4 if UsesSmallestThree else 3) bytes.
	Rotations []byte
	// Sh is N*sh_dim*3 bytes.
	Sh []byte
}

func (p *Packed) positionStride() int {
	if p.UsesFloat16 {
		return 2
	}
	return 3
}

func (p *Packed) rotationStride() int {
	if p.UsesSmallestThree {
		return 4
	}
	return 3
}

// Validate checks the six section lengths of the container layout: each
// byte slice must have exactly the length implied
// by NumPoints, ShDegree, and the two encoding flags.
func (p *Packed) Validate() error {
	dim, ok := shDimOrInvalid(p.ShDegree)
	if !ok {
		return newError(UnsupportedShDegree, "sh degree must be 0, 1, 2, or 3")
	}
	if p.NumPoints > maxPoints {
		return newError(TooManyPoints, "num_points exceeds maximum")
	}
	n := int(p.NumPoints)

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"positions", len(p.Positions), n * 3 * p.positionStride()},
		{"alphas", len(p.Alphas), n},
		{"colors", len(p.Colors), n * 3},
		{"scales", len(p.Scales), n * 3},
		{"rotations", len(p.Rotations), n * p.rotationStride()},
		{"sh", len(p.Sh), n * dim * 3},
	}
	for _, ck := range checks {
		if ck.got != ck.want {
			return newError(InvalidData, ck.name+" has wrong length for num_points/sh_degree/flags")
		}
	}
	return nil
}

func shDimOrInvalid(degree uint8) (int, bool) {
	d := shDim(degree)
	if d < 0 {
		return 0, false
	}
	return d, true
}
