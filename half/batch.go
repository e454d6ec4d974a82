package half

// batchSize is the number of elements processed in each unrolled loop iteration.
const batchSize = 8

// ConvertBytesToFloat32 converts bytes containing half-precision data to float32.
// Input bytes are in little-endian order (2 bytes per half).
func ConvertBytesToFloat32(dst []float32, src []byte) {
	n := len(src) / 2
	if len(dst) < n {
		panic("half: destination slice too small")
	}

	// Process in batches of 8
	i := 0
	for ; i+batchSize <= n; i += batchSize {
		j := i * 2
		dst[i] = FromBits(uint16(src[j]) | uint16(src[j+1])<<8).Float32()
		dst[i+1] = FromBits(uint16(src[j+2]) | uint16(src[j+3])<<8).Float32()
		dst[i+2] = FromBits(uint16(src[j+4]) | uint16(src[j+5])<<8).Float32()
		dst[i+3] = FromBits(uint16(src[j+6]) | uint16(src[j+7])<<8).Float32()
		dst[i+4] = FromBits(uint16(src[j+8]) | uint16(src[j+9])<<8).Float32()
		dst[i+5] = FromBits(uint16(src[j+10]) | uint16(src[j+11])<<8).Float32()
		dst[i+6] = FromBits(uint16(src[j+12]) | uint16(src[j+13])<<8).Float32()
		dst[i+7] = FromBits(uint16(src[j+14]) | uint16(src[j+15])<<8).Float32()
	}

	// Handle remainder
	for ; i < n; i++ {
		j := i * 2
		dst[i] = FromBits(uint16(src[j]) | uint16(src[j+1])<<8).Float32()
	}
}
