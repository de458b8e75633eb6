package bit

import "testing"

func TestCombineHighLow(t *testing.T) {
	if got := Combine(0xAB, 0xCD); got != 0xABCD {
		t.Errorf("Combine(0xAB, 0xCD) = 0x%04X, want 0xABCD", got)
	}
	if got := High(0xABCD); got != 0xAB {
		t.Errorf("High(0xABCD) = 0x%02X, want 0xAB", got)
	}
	if got := Low(0xABCD); got != 0xCD {
		t.Errorf("Low(0xABCD) = 0x%02X, want 0xCD", got)
	}
}

func TestSetClear(t *testing.T) {
	v := uint8(0)
	for i := uint8(0); i < 8; i++ {
		v = Set(i, v)
		if !IsSet(i, v) {
			t.Errorf("bit %d should be set in 0x%02X", i, v)
		}
	}
	if v != 0xFF {
		t.Fatalf("all bits set should be 0xFF, got 0x%02X", v)
	}
	for i := uint8(0); i < 8; i++ {
		v = Clear(i, v)
		if IsSet(i, v) {
			t.Errorf("bit %d should be clear in 0x%02X", i, v)
		}
	}
}

func TestIsSet16(t *testing.T) {
	if !IsSet16(9, 1<<9) {
		t.Error("bit 9 should be set")
	}
	if IsSet16(9, 1<<8) {
		t.Error("bit 9 should not be set")
	}
}

func TestExtractBits(t *testing.T) {
	cases := []struct {
		value         uint8
		high, low     uint8
		want          uint8
	}{
		{0b11010110, 6, 4, 0b101},
		{0b11010110, 1, 0, 0b10},
		{0xFF, 7, 0, 0xFF},
		{0x00, 3, 2, 0},
	}
	for _, c := range cases {
		if got := ExtractBits(c.value, c.high, c.low); got != c.want {
			t.Errorf("ExtractBits(0b%08b, %d, %d) = 0b%b, want 0b%b", c.value, c.high, c.low, got, c.want)
		}
	}
}
