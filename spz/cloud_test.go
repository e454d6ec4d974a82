package spz

import "testing"

func TestCloudValidate(t *testing.T) {
	c := newSingleSplatCloud(2)
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() on well-formed cloud: %v", err)
	}

	bad := newSingleSplatCloud(2)
	bad.Positions = bad.Positions[:2]
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject a short positions slice")
	}

	badDegree := newSingleSplatCloud(2)
	badDegree.ShDegree = 7
	if err := badDegree.Validate(); err == nil {
		t.Error("Validate() should reject an unsupported sh degree")
	}
}

func TestMedianVolumeEmpty(t *testing.T) {
	c := Cloud{}
	if got := c.MedianVolume(); got != 0.01 {
		t.Errorf("MedianVolume() on empty cloud = %v, want 0.01", got)
	}
}

func TestMedianVolumeOddEven(t *testing.T) {
	odd := Cloud{
		NumPoints: 3,
		Scales:    []float32{0, 0, 0, 1, 1, 1, 2, 2, 2},
	}
	// v_i = 0, 3, 6; v_{N/2} = v_1 = 3.
	want := float32(4.0 / 3.0 * 3.14159265358979323846 * 20.085536923187668)
	got := odd.MedianVolume()
	if diff := got - want; diff > 1e-1 || diff < -1e-1 {
		t.Errorf("MedianVolume() odd = %v, want ~%v", got, want)
	}

	even := Cloud{
		NumPoints: 2,
		Scales:    []float32{0, 0, 0, 1, 1, 1},
	}
	// v_i = 0, 3; N/2 = 1 (truncating), so v_{N/2} = 3.
	wantEven := float32(4.0 / 3.0 * 3.14159265358979323846 * 20.085536923187668)
	gotEven := even.MedianVolume()
	if diff := gotEven - wantEven; diff > 1e-1 || diff < -1e-1 {
		t.Errorf("MedianVolume() even = %v, want ~%v", gotEven, wantEven)
	}
}
