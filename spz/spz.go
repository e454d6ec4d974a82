// Package spz implements the binary container format for 3D Gaussian
// splat point clouds: quantization, the coordinate-system algebra applied
// during load and save, and a bridge to and from the PLY interchange
// format. All operations are pure functions over owned byte buffers and
// owned Cloud/Packed values; there is no package-level mutable state.
package spz

import "github.com/mrjoshuak/go-spz/compression"

// DecodeSPZ reads a gzip-framed SPZ container and returns the decoded
// cloud, converted into target (or left in the canonical RUB frame if
// target is Unspecified).
func DecodeSPZ(data []byte, target CoordinateSystem) (Cloud, error) {
	raw, err := compression.Gunzip(data)
	if err != nil {
		return Cloud{}, wrapError(DecompressionError, "gunzip", err)
	}
	packed, err := Deserialize(raw)
	if err != nil {
		return Cloud{}, err
	}
	return Unpack(packed, target)
}

// EncodeSPZ quantizes cloud (converting from source to RUB first, unless
// source is Unspecified) and returns the gzip-framed container bytes.
func EncodeSPZ(cloud Cloud, source CoordinateSystem) ([]byte, error) {
	packed, err := Pack(cloud, source)
	if err != nil {
		return nil, err
	}
	raw := Serialize(packed)
	out, err := compression.Gzip(raw)
	if err != nil {
		return nil, wrapError(CompressionError, "gzip", err)
	}
	return out, nil
}
