package memory

import (
	"testing"
	"time"
)

// bankedROM returns a ROM where every byte holds its bank number.
func bankedROM(banks int) []uint8 {
	rom := make([]uint8, banks*0x4000)
	for i := range rom {
		rom[i] = uint8(i / 0x4000)
	}
	return rom
}

func TestNoMBC(t *testing.T) {
	rom := make([]uint8, 0x8000)
	for i := range rom {
		rom[i] = uint8(i & 0xFF)
	}
	mbc := NewNoMBC(rom, 0)

	if got := mbc.Read(0x1234); got != 0x34 {
		t.Errorf("Read(0x1234) = 0x%02X; want 0x34", got)
	}

	// no banking registers, the write must not disturb ROM
	mbc.Write(0x2000, 0x42)
	if got := mbc.Read(0x2000); got != 0x00 {
		t.Errorf("Read(0x2000) after write = 0x%02X; want 0x00", got)
	}

	// no RAM fitted
	if got := mbc.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) = 0x%02X; want 0xFF", got)
	}

	withRAM := NewNoMBC(rom, 1)
	withRAM.Write(0xA010, 0x55)
	if got := withRAM.Read(0xA010); got != 0x55 {
		t.Errorf("RAM round trip = 0x%02X; want 0x55", got)
	}
}

func TestMBC1(t *testing.T) {
	t.Run("ROM Bank 0 (Fixed)", func(t *testing.T) {
		rom := make([]uint8, 0x8000)
		for i := range rom {
			rom[i] = uint8(i & 0xFF)
		}
		mbc := NewMBC1(rom, false, 0)

		for a := uint16(0x0000); a < 0x4000; a++ {
			got := mbc.Read(a)
			want := uint8(a & 0xFF)
			if got != want {
				t.Fatalf("Read(0x%04X) = 0x%02X; want 0x%02X", a, got, want)
			}
		}
	})

	t.Run("ROM Bank Switching", func(t *testing.T) {
		mbc := NewMBC1(bankedROM(4), false, 0)

		tests := []struct {
			name    string
			bankNum uint8
			want    uint8
		}{
			{"Default Bank (1)", 1, 1},
			{"Switch to Bank 2", 2, 2},
			{"Switch to Bank 3", 3, 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.bankNum > 1 {
					mbc.Write(0x2000, tt.bankNum)
				}
				if got := mbc.Read(0x4000); got != tt.want {
					t.Errorf("Bank %d: Read(0x4000) = 0x%02X; want 0x%02X", tt.bankNum, got, tt.want)
				}
			})
		}
	})

	t.Run("Bank Wrapping", func(t *testing.T) {
		// selecting bank 5 on a 4-bank cartridge wraps to bank 1
		mbc := NewMBC1(bankedROM(4), false, 0)
		mbc.Write(0x2000, 5)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("Read(0x4000) with bank 5 of 4 = 0x%02X; want 0x01", got)
		}
	})

	t.Run("RAM Banking", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), false, 4)

		t.Run("RAM Disabled by Default", func(t *testing.T) {
			if got := mbc.Read(0xA000); got != 0xFF {
				t.Errorf("Read from disabled RAM = 0x%02X; want 0xFF", got)
			}
		})

		t.Run("RAM Enable/Disable", func(t *testing.T) {
			mbc.Write(0x0000, 0x0A)
			mbc.Write(0xA000, 0x42)
			if got := mbc.Read(0xA000); got != 0x42 {
				t.Errorf("Read after RAM enable = 0x%02X; want 0x42", got)
			}

			mbc.Write(0x0000, 0x00)
			if got := mbc.Read(0xA000); got != 0xFF {
				t.Errorf("Read after RAM disable = 0x%02X; want 0xFF", got)
			}
		})

		t.Run("Multiple RAM Banks", func(t *testing.T) {
			mbc.Write(0x0000, 0x0A)
			mbc.Write(0x6000, 1) // RAM banking mode

			for bank := uint8(0); bank < 4; bank++ {
				mbc.Write(0x4000, bank)
				mbc.Write(0xA000, 0x42+bank)
			}
			for bank := uint8(0); bank < 4; bank++ {
				mbc.Write(0x4000, bank)
				if got := mbc.Read(0xA000); got != 0x42+bank {
					t.Errorf("Bank %d: got 0x%02X; want 0x%02X", bank, got, 0x42+bank)
				}
			}
		})
	})

	t.Run("Banking Modes", func(t *testing.T) {
		mbc := NewMBC1(bankedROM(8), false, 4)

		t.Run("ROM Banking Mode (0)", func(t *testing.T) {
			mbc.Write(0x6000, 0)
			mbc.Write(0x2000, 5)
			mbc.Write(0x4000, 0)
			if got := mbc.Read(0x4000); got != 5 {
				t.Errorf("Read in ROM mode = 0x%02X; want 0x05", got)
			}

			// bank 37 on 8 banks wraps to 5
			mbc.Write(0x4000, 1)
			if got := mbc.Read(0x4000); got != 5 {
				t.Errorf("Read with wrapped upper bits = 0x%02X; want 0x05", got)
			}
		})

		t.Run("RAM Banking Mode (1)", func(t *testing.T) {
			mbc.Write(0x6000, 1)
			mbc.Write(0x2000, 5)
			mbc.Write(0x4000, 2)

			if mbc.romBank != 5 {
				t.Errorf("ROM bank in RAM mode = %d; want 5", mbc.romBank)
			}
			if mbc.ramBank != 2 {
				t.Errorf("RAM bank = %d; want 2", mbc.ramBank)
			}
			if got := mbc.Read(0x4000); got != 5 {
				t.Errorf("Read in RAM mode = 0x%02X; want 0x05", got)
			}
		})
	})

	t.Run("Bank 0 Translation", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), false, 0)
		mbc.Write(0x2000, 0)
		if mbc.romBank != 1 {
			t.Errorf("ROM bank 0 not translated to 1, got bank %d", mbc.romBank)
		}
	})
}

func TestMBC2(t *testing.T) {
	t.Run("Bank Select Needs Address Bit 8", func(t *testing.T) {
		mbc := NewMBC2(bankedROM(4), false)

		// bit 8 clear: this is a RAM enable write, not a bank select
		mbc.Write(0x2000, 2)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("bank after write without bit 8 = %d; want 1", got)
		}

		mbc.Write(0x2100, 2)
		if got := mbc.Read(0x4000); got != 2 {
			t.Errorf("bank after write with bit 8 = %d; want 2", got)
		}

		mbc.Write(0x2100, 0)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("bank 0 not translated to 1, got %d", got)
		}
	})

	t.Run("RAM Enable Needs Address Bit 8 Clear", func(t *testing.T) {
		mbc := NewMBC2(bankedROM(4), false)

		mbc.Write(0x0100, 0x0A) // bit 8 set, ignored
		if got := mbc.Read(0xA000); got != 0xFF {
			t.Errorf("RAM enabled by write with bit 8 set")
		}

		mbc.Write(0x0000, 0x0A)
		mbc.Write(0xA000, 0x05)
		if got := mbc.Read(0xA000); got != 0xF5 {
			t.Errorf("Read(0xA000) = 0x%02X; want 0xF5", got)
		}
	})

	t.Run("Half-Byte RAM", func(t *testing.T) {
		mbc := NewMBC2(bankedROM(4), false)
		mbc.Write(0x0000, 0x0A)

		// the upper nibble is dropped on write and reads back as 1s
		mbc.Write(0xA010, 0xAB)
		if got := mbc.Read(0xA010); got != 0xFB {
			t.Errorf("Read(0xA010) = 0x%02X; want 0xFB", got)
		}

		// the 512 half-bytes echo through the whole window
		if got := mbc.Read(0xA210); got != 0xFB {
			t.Errorf("echoed Read(0xA210) = 0x%02X; want 0xFB", got)
		}
	})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMBC3(t *testing.T) {
	t.Run("7-Bit ROM Bank", func(t *testing.T) {
		mbc := NewMBC3(bankedROM(8), 0, false, nil)
		mbc.Write(0x2000, 0x05)
		if got := mbc.Read(0x4000); got != 5 {
			t.Errorf("Read(0x4000) = 0x%02X; want 0x05", got)
		}
		mbc.Write(0x2000, 0x00)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("bank 0 not translated to 1, got %d", got)
		}
	})

	t.Run("RTC Latch", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		mbc := NewMBC3(bankedROM(2), 0, true, clock)
		mbc.Write(0x0000, 0x0A)

		clock.advance(3*time.Hour + 2*time.Minute + 1*time.Second)
		mbc.Write(0x6000, 0x00)
		mbc.Write(0x6000, 0x01)

		mbc.Write(0x4000, 0x08)
		if got := mbc.Read(0xA000); got != 1 {
			t.Errorf("seconds = %d; want 1", got)
		}
		mbc.Write(0x4000, 0x09)
		if got := mbc.Read(0xA000); got != 2 {
			t.Errorf("minutes = %d; want 2", got)
		}
		mbc.Write(0x4000, 0x0A)
		if got := mbc.Read(0xA000); got != 3 {
			t.Errorf("hours = %d; want 3", got)
		}

		// time keeps running but reads serve the snapshot until relatched
		clock.advance(30 * time.Second)
		mbc.Write(0x4000, 0x08)
		if got := mbc.Read(0xA000); got != 1 {
			t.Errorf("seconds after advance without latch = %d; want 1", got)
		}

		mbc.Write(0x6000, 0x00)
		mbc.Write(0x6000, 0x01)
		if got := mbc.Read(0xA000); got != 31 {
			t.Errorf("seconds after relatch = %d; want 31", got)
		}
	})

	t.Run("RTC Halt", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		mbc := NewMBC3(bankedROM(2), 0, true, clock)
		mbc.Write(0x0000, 0x0A)

		// set the halt bit on the days-high register
		mbc.Write(0x4000, 0x0C)
		mbc.Write(0xA000, 0x40)

		clock.advance(time.Minute)
		mbc.Write(0x6000, 0x00)
		mbc.Write(0x6000, 0x01)

		mbc.Write(0x4000, 0x08)
		if got := mbc.Read(0xA000); got != 0 {
			t.Errorf("halted clock advanced: seconds = %d; want 0", got)
		}
	})
}

func TestMBC5(t *testing.T) {
	t.Run("9-Bit ROM Bank", func(t *testing.T) {
		mbc := NewMBC5(bankedROM(4), false, 0)

		mbc.Write(0x2000, 0x02)
		if got := mbc.Read(0x4000); got != 2 {
			t.Errorf("Read(0x4000) = 0x%02X; want 0x02", got)
		}

		// bit 8 write selects bank 0x102, which wraps on a 4-bank ROM
		mbc.Write(0x3000, 0x01)
		if got := mbc.Read(0x4000); got != 2 {
			t.Errorf("Read(0x4000) with bit 8 = 0x%02X; want 0x02", got)
		}
	})

	t.Run("Bank 0 Selectable", func(t *testing.T) {
		mbc := NewMBC5(bankedROM(4), false, 0)
		mbc.Write(0x2000, 0x00)
		if got := mbc.Read(0x4000); got != 0 {
			t.Errorf("Read(0x4000) with bank 0 = 0x%02X; want 0x00", got)
		}
	})

	t.Run("RAM Banking", func(t *testing.T) {
		mbc := NewMBC5(bankedROM(2), false, 16)
		mbc.Write(0x0000, 0x0A)

		mbc.Write(0x4000, 0x00)
		mbc.Write(0xA000, 0x11)
		mbc.Write(0x4000, 0x0F)
		mbc.Write(0xA000, 0x22)

		mbc.Write(0x4000, 0x00)
		if got := mbc.Read(0xA000); got != 0x11 {
			t.Errorf("bank 0 = 0x%02X; want 0x11", got)
		}
		mbc.Write(0x4000, 0x0F)
		if got := mbc.Read(0xA000); got != 0x22 {
			t.Errorf("bank 15 = 0x%02X; want 0x22", got)
		}
	})
}
