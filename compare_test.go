package banyan

import "testing"

func TestCompareExchange(t *testing.T) {
	tests := []struct {
		name      string
		ki, kj    uint32
		ascending bool
		wantSwap  bool
	}{
		{"ascending in order", 1, 2, true, false},
		{"ascending out of order", 2, 1, true, true},
		{"descending in order", 2, 1, false, false},
		{"descending out of order", 1, 2, false, true},
		{"equal ascending", 5, 5, true, false},
		{"equal descending", 5, 5, false, false},
	}

	for _, tt := range tests {
		keys := []uint32{tt.ki, tt.kj}
		values := []uint32{10, 20}
		CompareExchange(keys, values, 0, 1, tt.ascending)

		wantKeys := []uint32{tt.ki, tt.kj}
		wantValues := []uint32{10, 20}
		if tt.wantSwap {
			wantKeys[0], wantKeys[1] = wantKeys[1], wantKeys[0]
			wantValues[0], wantValues[1] = wantValues[1], wantValues[0]
		}
		if keys[0] != wantKeys[0] || keys[1] != wantKeys[1] {
			t.Errorf("%s: keys = %v, want %v", tt.name, keys, wantKeys)
		}
		if values[0] != wantValues[0] || values[1] != wantValues[1] {
			t.Errorf("%s: values = %v, want %v", tt.name, values, wantValues)
		}
	}
}

func TestCompareExchangeNilValues(t *testing.T) {
	keys := []uint32{9, 3}
	CompareExchange(keys, nil, 0, 1, true)
	if keys[0] != 3 || keys[1] != 9 {
		t.Errorf("keys = %v, want [3 9]", keys)
	}
}

func TestPowerOfTwo(t *testing.T) {
	for _, x := range []int{1, 2, 4, 1024, 1 << 20} {
		if !powerOfTwo(x) {
			t.Errorf("powerOfTwo(%d) = false", x)
		}
	}
	for _, x := range []int{0, -1, -2, 3, 6, 12, 1<<20 + 1} {
		if powerOfTwo(x) {
			t.Errorf("powerOfTwo(%d) = true", x)
		}
	}
}

func TestLog2(t *testing.T) {
	for bits := 0; bits <= 20; bits++ {
		if got := log2(1 << bits); got != bits {
			t.Errorf("log2(%d) = %d, want %d", 1<<bits, got, bits)
		}
	}
}
