package chip8

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T, rom []byte) *VM {
	t.Helper()

	vm := New()
	vm.SetLogger(log.New(io.Discard, "", 0))
	require.NoError(t, vm.LoadROM(rom))
	return vm
}

func TestReset(t *testing.T) {
	t.Parallel()

	vm := newTestVM(t, []byte{0x60, 0x0A})
	vm.ExecuteInstruction()
	vm.SetSpeed(50)
	vm.SetPaused(true)
	vm.KeyPress(0x3)

	vm.Reset()

	require.Equal(t, uint16(EntryPoint), vm.PC())
	require.Equal(t, byte(0), vm.SP())
	require.Equal(t, uint16(0), vm.I())
	require.Equal(t, byte(0), vm.DelayTimer())
	require.Equal(t, byte(0), vm.SoundTimer())
	require.Equal(t, uint(DefaultSpeed), vm.Speed())
	require.False(t, vm.Paused())
	require.False(t, vm.WaitingForKeyPress())
	require.False(t, vm.DrawFlag())

	mem := vm.Memory()
	require.Equal(t, fontSet[:], mem[:len(fontSet)], "fontset at 0x000")
	require.Equal(t, byte(0), mem[EntryPoint], "rom cleared")

	require.Equal(t, [16]byte{}, vm.Registers())
	require.Equal(t, [StackDepth]uint16{}, vm.Stack())
	require.Equal(t, [NumKeys]bool{}, vm.Keys())
	require.Equal(t, [DisplayHeight][DisplayWidth]byte{}, vm.Display())
}

func TestLoadROM(t *testing.T) {
	t.Parallel()

	t.Run("loads at the entry point", func(t *testing.T) {
		vm := newTestVM(t, []byte{0xA1, 0x23, 0x60, 0xFF})

		mem := vm.Memory()
		require.Equal(t, byte(0xA1), mem[0x200])
		require.Equal(t, byte(0x23), mem[0x201])
		require.Equal(t, byte(0x60), mem[0x202])
		require.Equal(t, byte(0xFF), mem[0x203])
	})

	t.Run("accepts a max-size rom", func(t *testing.T) {
		rom := make([]byte, MaxROMSize)
		rom[0] = 0xAB
		rom[MaxROMSize-1] = 0xCD

		vm := New()
		require.NoError(t, vm.LoadROM(rom))

		mem := vm.Memory()
		require.Equal(t, byte(0xAB), mem[EntryPoint])
		require.Equal(t, byte(0xCD), mem[MemorySize-1])
	})

	t.Run("rejects an oversized rom without a partial load", func(t *testing.T) {
		vm := New()
		err := vm.LoadROM(make([]byte, MaxROMSize+1))
		require.Error(t, err)

		mem := vm.Memory()
		require.Equal(t, byte(0), mem[EntryPoint], "memory untouched")
	})
}

func TestLoadROMFile(t *testing.T) {
	t.Parallel()

	t.Run("loads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.ch8")
		require.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o644))

		vm := New()
		require.NoError(t, vm.LoadROMFile(path))
		require.Equal(t, uint16(0x1200), vm.ReadWord(EntryPoint))
	})

	t.Run("errors on a missing file", func(t *testing.T) {
		vm := New()
		require.Error(t, vm.LoadROMFile(filepath.Join(t.TempDir(), "nope.ch8")))
	})
}

func TestReadWord(t *testing.T) {
	t.Parallel()

	vm := newTestVM(t, []byte{0xAB, 0xCD})
	require.Equal(t, uint16(0xABCD), vm.ReadWord(EntryPoint), "big-endian")

	// Reads wrap at the 4K boundary rather than running off the array.
	require.NotPanics(t, func() { vm.ReadWord(0xFFF) })
}

func TestExecuteInstruction(t *testing.T) {
	t.Parallel()

	t.Run("advances pc by 2 and records the opcode", func(t *testing.T) {
		vm := newTestVM(t, []byte{0x60, 0x0A})

		vm.ExecuteInstruction()

		require.Equal(t, uint16(0x202), vm.PC())
		require.Equal(t, uint16(0x600A), vm.LastInstruction())
	})

	t.Run("logs and continues past an unknown opcode", func(t *testing.T) {
		vm := newTestVM(t, []byte{
			0xFF, 0xFF, // not a chip-8 instruction
			0x60, 0x0A, // v[0] = 0x0A
		})

		vm.ExecuteInstruction()
		require.Equal(t, uint16(0x202), vm.PC())

		vm.ExecuteInstruction()
		require.Equal(t, byte(0x0A), vm.V(0))
	})

	t.Run("is suspended while waiting for a key", func(t *testing.T) {
		vm := newTestVM(t, []byte{
			0xF0, 0x0A, // v[0] = next key press
			0x61, 0x07, // v[1] = 0x07
		})

		vm.ExecuteInstruction()
		require.True(t, vm.WaitingForKeyPress())

		vm.ExecuteInstruction()
		require.Equal(t, uint16(0x202), vm.PC(), "fetch stalled")
		require.Equal(t, byte(0), vm.V(1))
	})
}

func TestEmulateCycle(t *testing.T) {
	t.Parallel()

	t.Run("runs speed instructions per cycle", func(t *testing.T) {
		vm := newTestVM(t, []byte{
			0x60, 0x01, // v[0] = 0x01
			0x61, 0x02, // v[1] = 0x02
			0x62, 0x03, // v[2] = 0x03
		})
		vm.SetSpeed(2)

		vm.EmulateCycle()

		require.Equal(t, byte(0x01), vm.V(0))
		require.Equal(t, byte(0x02), vm.V(1))
		require.Equal(t, byte(0), vm.V(2), "third instruction not reached")
		require.Equal(t, uint16(0x204), vm.PC())
	})

	t.Run("decrements both timers exactly once per cycle", func(t *testing.T) {
		vm := newTestVM(t, []byte{
			0x60, 0x05, // v[0] = 0x05
			0xF0, 0x15, // delay timer = v[0]
			0xF0, 0x18, // sound timer = v[0]
		})
		vm.SetSpeed(3)

		vm.EmulateCycle()

		require.Equal(t, byte(4), vm.DelayTimer())
		require.Equal(t, byte(4), vm.SoundTimer())

		vm.EmulateCycle()
		require.Equal(t, byte(3), vm.DelayTimer())
	})

	t.Run("timers saturate at zero", func(t *testing.T) {
		vm := newTestVM(t, nil)

		vm.EmulateCycle()

		require.Equal(t, byte(0), vm.DelayTimer())
		require.Equal(t, byte(0), vm.SoundTimer())
	})

	t.Run("is a no-op while paused", func(t *testing.T) {
		vm := newTestVM(t, []byte{0x60, 0x01})
		vm.delayTimer = 5
		vm.SetPaused(true)

		vm.EmulateCycle()

		require.Equal(t, byte(0), vm.V(0))
		require.Equal(t, uint16(0x200), vm.PC())
		require.Equal(t, byte(5), vm.DelayTimer(), "timers do not tick while paused")

		vm.SetPaused(false)
		vm.EmulateCycle()
		require.Equal(t, byte(0x01), vm.V(0))
	})

	t.Run("aborts the batch but still ticks timers while waiting for a key", func(t *testing.T) {
		vm := newTestVM(t, []byte{
			0x60, 0x05, // v[0] = 0x05
			0xF0, 0x15, // delay timer = v[0]
			0xF1, 0x0A, // v[1] = next key press
			0x62, 0x09, // v[2] = 0x09
		})

		vm.EmulateCycle()

		require.True(t, vm.WaitingForKeyPress())
		require.Equal(t, byte(0), vm.V(2), "batch aborted at FX0A")
		require.Equal(t, byte(4), vm.DelayTimer())

		vm.EmulateCycle()
		require.Equal(t, byte(3), vm.DelayTimer(), "timers tick while waiting")
		require.Equal(t, byte(0), vm.V(2))
	})
}

func TestWaitForKeyPress(t *testing.T) {
	t.Parallel()

	vm := newTestVM(t, []byte{
		0xF0, 0x0A, // v[0] = next key press
		0x61, 0x07, // v[1] = 0x07
	})

	vm.ExecuteInstruction()
	require.True(t, vm.WaitingForKeyPress())
	require.Equal(t, byte(0), vm.KeyRegister())

	// Releases never satisfy the wait.
	vm.KeyRelease(0xA)
	require.True(t, vm.WaitingForKeyPress())

	vm.KeyPress(0xA)
	require.False(t, vm.WaitingForKeyPress())
	require.Equal(t, byte(0xA), vm.V(0))

	vm.ExecuteInstruction()
	require.Equal(t, byte(0x07), vm.V(1), "fetch resumed after the latch")
}

func TestKeyInput(t *testing.T) {
	t.Parallel()

	t.Run("press and release", func(t *testing.T) {
		vm := newTestVM(t, nil)

		vm.KeyPress(0x3)
		require.True(t, vm.Keys()[0x3])

		vm.KeyRelease(0x3)
		require.False(t, vm.Keys()[0x3])
	})

	t.Run("keys outside the pad are ignored", func(t *testing.T) {
		vm := newTestVM(t, nil)

		require.NotPanics(t, func() {
			vm.KeyPress(16)
			vm.KeyPress(0xFF)
			vm.KeyRelease(16)
		})
		require.Equal(t, [NumKeys]bool{}, vm.Keys())
	})
}

func TestCallRetRoundTrip(t *testing.T) {
	t.Parallel()

	vm := newTestVM(t, []byte{
		0x22, 0x04, // 0x200: call 0x204
		0x12, 0x00, // 0x202: jump to 0x200
		0x00, 0xEE, // 0x204: return
	})

	vm.ExecuteInstruction()
	require.Equal(t, uint16(0x204), vm.PC())
	require.Equal(t, byte(1), vm.SP())
	require.Equal(t, uint16(0x202), vm.Stack()[0], "return address is the instruction after the call")

	vm.ExecuteInstruction()
	require.Equal(t, uint16(0x202), vm.PC())
	require.Equal(t, byte(0), vm.SP(), "net stack change is zero")
}

func TestStackFaults(t *testing.T) {
	t.Parallel()

	t.Run("ret with an empty stack leaves state unchanged", func(t *testing.T) {
		vm := newTestVM(t, []byte{0x00, 0xEE})

		vm.ExecuteInstruction()

		require.Equal(t, uint16(0x202), vm.PC(), "pc already advanced past the fault")
		require.Equal(t, byte(0), vm.SP())
	})

	t.Run("call with a full stack pushes and jumps nothing", func(t *testing.T) {
		vm := newTestVM(t, []byte{0x23, 0x00})
		vm.sp = StackDepth

		vm.ExecuteInstruction()

		require.Equal(t, uint16(0x202), vm.PC())
		require.Equal(t, byte(StackDepth), vm.SP())
		require.Equal(t, [StackDepth]uint16{}, vm.Stack())
	})

	t.Run("seventeenth nested call faults, sixteen succeed", func(t *testing.T) {
		vm := newTestVM(t, nil)
		for n := 0; n < StackDepth; n++ {
			require.NoError(t, vm.execute(0x2300))
		}
		require.Error(t, vm.execute(0x2300))
		require.Equal(t, byte(StackDepth), vm.SP())
	})
}

func TestSetSpeed(t *testing.T) {
	t.Parallel()

	vm := New()

	vm.SetSpeed(42)
	require.Equal(t, uint(42), vm.Speed())

	vm.SetSpeed(0)
	require.Equal(t, uint(MinSpeed), vm.Speed())

	vm.SetSpeed(1000)
	require.Equal(t, uint(MaxSpeed), vm.Speed())
}
