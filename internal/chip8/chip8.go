// Package chip8 implements a CHIP-8 virtual machine. Chip-8 used to be implemented on 4k systems like the
// Telmac 1800 and Cosmac VIP where the chip-8 interpreter itself occupied the first 512 bytes of memory
// (up to 0x200). In modern implementations (like ours here), where the interpreter runs natively outside
// the 4K memory space, there is no need to avoid the lower 512 bytes, and it is common to store font data there.
package chip8

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

//		System memory map
// 		+---------------+= 0xFFF (4095) End Chip-8 RAM
// 		|               |
// 		| 0x200 to 0xFFF|
// 		|     Chip-8    |
// 		| Program / Data|
// 		|     Space     |
// 		|               |
// 		+---------------+= 0x200 (512) Start of most Chip-8 programs
// 		| 0x000 to 0x1FF|
// 		| Reserved for  |
// 		|  interpreter  |
// 		+---------------+= 0x000 (0) Begin Chip-8 RAM. We store font data here instead of the interpreter because we don't have that restriction.

const (
	// MemorySize is the amount of addressable RAM in bytes.
	MemorySize = 4096

	// EntryPoint is the address programs are loaded at and the PC starts from.
	EntryPoint = 0x200

	// MaxROMSize is the largest ROM that fits between the entry point and the end of RAM.
	MaxROMSize = MemorySize - EntryPoint

	// DisplayWidth and DisplayHeight describe the monochrome framebuffer.
	DisplayWidth  = 64
	DisplayHeight = 32

	// NumKeys is the size of the hex keypad (0x0-0xF).
	NumKeys = 16

	// StackDepth is the number of nested subroutine calls supported.
	StackDepth = 16

	// DefaultSpeed is the number of instructions executed per EmulateCycle call.
	DefaultSpeed = 10

	// MinSpeed and MaxSpeed bound the writable speed multiplier.
	MinSpeed = 1
	MaxSpeed = 100
)

// Quirks gates the two classic CHIP-8 compatibility ambiguities. The zero
// value is the behavior this machine commits to: 8XY6/8XYE shift Vx in
// place and FX55/FX65 leave I unchanged.
type Quirks struct {
	// ShiftSourceY makes 8XY6/8XYE copy Vy into Vx before shifting (COSMAC VIP behavior).
	ShiftSourceY bool

	// IndexIncrement makes FX55/FX65 leave I at I+x+1 after the block transfer.
	IndexIncrement bool
}

// VM represents the chip-8 virtual machine
type VM struct {
	// Chip-8 system memory, see memory map above
	memory [MemorySize]byte

	// 8-bit general purpose registers (V0 - VF). VF doubles as the flag
	// register for carry, borrow, shift-out, and sprite collision.
	v [16]byte

	// Index register (0x000 to 0xFFF)
	i uint16

	// Program counter (0x000 to 0xFFF)
	pc uint16

	// Internal stack to store return addresses when calling procedures
	stack [StackDepth]uint16

	// Stack pointer indexes the next free stack slot: 0 is empty, StackDepth is full
	sp byte

	// 8-bit delay timer which counts down at 60 hertz, until it reaches 0
	delayTimer byte

	// 8-bit sound timer which counts down at 60 hertz, until it reaches 0
	soundTimer byte

	// Monochrome framebuffer, row 0 topmost. Pixels get flipped on and off
	// by sprite draws; the host renders it when drawFlag is set.
	display [DisplayHeight][DisplayWidth]byte

	// Keypad is HEX based: 0x0-0xF
	//  1  2  3  C
	//  4  5  6  D
	//  7  8  9  E
	//  A  0  B  F
	keys [NumKeys]bool

	// We don't draw on every cycle; the draw flag is set when the
	// framebuffer changed and cleared by the host after it renders a frame.
	drawFlag bool

	// When paused, EmulateCycle is a no-op.
	paused bool

	// FX0A suspension state: while waitingForKey is set, instruction fetch
	// stalls (timers keep ticking) until a key press latches its index into
	// v[keyRegister].
	waitingForKey bool
	keyRegister   byte

	// Instructions executed per EmulateCycle call.
	speed uint

	// Opcode most recently executed, kept as a debug aid.
	lastInstruction uint16

	quirks Quirks
	rng    *rand.Rand
	logger *log.Logger
}

// New initializes a VM with the fontset loaded, PC at the entry point, and
// the default speed. Load a ROM with LoadROM before driving cycles.
func New() *VM {
	vm := VM{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
	vm.Reset()
	return &vm
}

// Reset re-initializes all machine state: memory is zeroed and the fontset
// reloaded, registers, stack, timers, framebuffer, and keys are cleared, PC
// returns to the entry point, and the speed returns to the default. Quirks
// and the diagnostic logger survive a reset.
func (vm *VM) Reset() {
	vm.memory = [MemorySize]byte{}
	vm.v = [16]byte{}
	vm.i = 0
	vm.pc = EntryPoint
	vm.stack = [StackDepth]uint16{}
	vm.sp = 0
	vm.delayTimer = 0
	vm.soundTimer = 0
	vm.display = [DisplayHeight][DisplayWidth]byte{}
	vm.keys = [NumKeys]bool{}
	vm.drawFlag = false
	vm.paused = false
	vm.waitingForKey = false
	vm.keyRegister = 0
	vm.speed = DefaultSpeed
	vm.lastInstruction = 0

	copy(vm.memory[:], fontSet[:])
}

// LoadROM copies a flat ROM image into memory starting at the entry point.
// Oversized ROMs are rejected outright; memory is left untouched.
func (vm *VM) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("rom is too large: %d bytes, max size is %d bytes", len(rom), MaxROMSize)
	}
	copy(vm.memory[EntryPoint:], rom)
	return nil
}

// LoadROMFile reads a ROM image from disk and loads it at the entry point.
func (vm *VM) LoadROMFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rom file %s: %w", path, err)
	}
	return vm.LoadROM(rom)
}

// SetQuirks selects the compatibility variants for shifts and block transfers.
func (vm *VM) SetQuirks(q Quirks) {
	vm.quirks = q
}

// SetLogger redirects the VM's diagnostic channel (unknown opcodes, stack faults).
func (vm *VM) SetLogger(l *log.Logger) {
	vm.logger = l
}

// EmulateCycle executes up to speed instructions and then ticks both timers
// once. Call it at 60 Hz for correct timer behavior. While paused it does
// nothing at all; while waiting for a key press the instruction batch stalls
// but the timer tick still happens.
func (vm *VM) EmulateCycle() {
	if vm.paused {
		return
	}
	for n := uint(0); n < vm.speed; n++ {
		if vm.waitingForKey {
			break
		}
		vm.ExecuteInstruction()
	}
	vm.tickTimers()
}

// ExecuteInstruction runs a single fetch, decode, and execute step. It
// respects the FX0A wait state and never ticks the timers.
func (vm *VM) ExecuteInstruction() {
	if vm.waitingForKey {
		return
	}
	opcode := vm.fetch()
	vm.lastInstruction = opcode
	if err := vm.execute(opcode); err != nil {
		vm.logger.Printf("chip8: %v (pc=0x%03X)", err, vm.pc)
	}
}

// fetch reads the big-endian opcode at PC and advances PC by 2. The advance
// happens before execution so jump, call, and skip opcodes can overwrite or
// further adjust PC.
func (vm *VM) fetch() uint16 {
	opcode := vm.ReadWord(vm.pc)
	vm.pc = (vm.pc + 2) & 0xFFF
	return opcode
}

// execute dispatches on the high nibble of the opcode, sub-dispatching where
// a family shares it. One opcode is 2 bytes (ex. 0xA2F0), decoded into the
// standard fields: x and y register identifiers, the low nibble n, the low
// byte nn, and the low 12 bits nnn.
func (vm *VM) execute(opcode uint16) error {
	x := byte(opcode>>8) & 0x0F
	y := byte(opcode>>4) & 0x0F
	n := byte(opcode) & 0x0F
	nn := byte(opcode)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		switch nn {
		case 0xE0:
			vm.cls()
		case 0xEE:
			return vm.ret()
		default:
			// 0NNN machine-code routines only existed on the original
			// hardware; treat them like any other unknown opcode.
			return vm.unknownOp(opcode)
		}
	case 0x1000:
		vm.jp(nnn)
	case 0x2000:
		return vm.call(nnn)
	case 0x3000:
		vm.seNN(x, nn)
	case 0x4000:
		vm.sneNN(x, nn)
	case 0x5000:
		if n != 0 {
			return vm.unknownOp(opcode)
		}
		vm.seXY(x, y)
	case 0x6000:
		vm.ldNN(x, nn)
	case 0x7000:
		vm.addNN(x, nn)
	case 0x8000:
		switch n {
		case 0x0:
			vm.ldXY(x, y)
		case 0x1:
			vm.or(x, y)
		case 0x2:
			vm.and(x, y)
		case 0x3:
			vm.xor(x, y)
		case 0x4:
			vm.addXY(x, y)
		case 0x5:
			vm.subXY(x, y)
		case 0x6:
			vm.shr(x, y)
		case 0x7:
			vm.subn(x, y)
		case 0xE:
			vm.shl(x, y)
		default:
			return vm.unknownOp(opcode)
		}
	case 0x9000:
		if n != 0 {
			return vm.unknownOp(opcode)
		}
		vm.sneXY(x, y)
	case 0xA000:
		vm.ldI(nnn)
	case 0xB000:
		vm.jpV0(nnn)
	case 0xC000:
		vm.rnd(x, nn)
	case 0xD000:
		vm.drw(x, y, n)
	case 0xE000:
		switch nn {
		case 0x9E:
			vm.skp(x)
		case 0xA1:
			vm.sknp(x)
		default:
			return vm.unknownOp(opcode)
		}
	case 0xF000:
		switch nn {
		case 0x07:
			vm.ldVxDT(x)
		case 0x0A:
			vm.waitKey(x)
		case 0x15:
			vm.ldDTVx(x)
		case 0x18:
			vm.ldSTVx(x)
		case 0x1E:
			vm.addI(x)
		case 0x29:
			vm.ldF(x)
		case 0x33:
			vm.bcd(x)
		case 0x55:
			vm.saveRegs(x)
		case 0x65:
			vm.loadRegs(x)
		default:
			return vm.unknownOp(opcode)
		}
	default:
		return vm.unknownOp(opcode)
	}
	return nil
}

// tickTimers decrements both timers toward zero. Exactly one decrement per
// EmulateCycle call, independent of instruction throughput.
func (vm *VM) tickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}
	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// KeyPress records key k as held. If the machine is stalled on FX0A the key
// index is latched into the chosen register and fetch resumes. Keys outside
// the hex pad are ignored.
func (vm *VM) KeyPress(k byte) {
	if k >= NumKeys {
		return
	}
	vm.keys[k] = true
	if vm.waitingForKey {
		vm.v[vm.keyRegister] = k
		vm.waitingForKey = false
	}
}

// KeyRelease records key k as no longer held. Keys outside the hex pad are ignored.
func (vm *VM) KeyRelease(k byte) {
	if k >= NumKeys {
		return
	}
	vm.keys[k] = false
}

// ReadWord returns the big-endian 16-bit value at addr. Addresses wrap at
// the 4K boundary.
func (vm *VM) ReadWord(addr uint16) uint16 {
	return uint16(vm.memory[addr&0xFFF])<<8 | uint16(vm.memory[(addr+1)&0xFFF])
}

func (vm *VM) unknownOp(opcode uint16) error {
	return fmt.Errorf("unknown opcode: 0x%04X", opcode)
}

// Memory returns a copy of system RAM for debug views.
func (vm *VM) Memory() [MemorySize]byte {
	return vm.memory
}

// Registers returns a copy of the general purpose registers V0-VF.
func (vm *VM) Registers() [16]byte {
	return vm.v
}

// V returns the value of register Vr.
func (vm *VM) V(r byte) byte {
	return vm.v[r&0xF]
}

// I returns the index register.
func (vm *VM) I() uint16 {
	return vm.i
}

// PC returns the program counter.
func (vm *VM) PC() uint16 {
	return vm.pc
}

// SP returns the stack pointer: the index of the next free stack slot.
func (vm *VM) SP() byte {
	return vm.sp
}

// Stack returns a copy of the call stack.
func (vm *VM) Stack() [StackDepth]uint16 {
	return vm.stack
}

// DelayTimer returns the delay timer value.
func (vm *VM) DelayTimer() byte {
	return vm.delayTimer
}

// SoundTimer returns the sound timer value.
func (vm *VM) SoundTimer() byte {
	return vm.soundTimer
}

// Display returns a copy of the framebuffer, row-major with row 0 topmost.
func (vm *VM) Display() [DisplayHeight][DisplayWidth]byte {
	return vm.display
}

// Keys returns a copy of the keypad state.
func (vm *VM) Keys() [NumKeys]bool {
	return vm.keys
}

// DrawFlag reports whether the framebuffer changed since the host last
// cleared the flag.
func (vm *VM) DrawFlag() bool {
	return vm.drawFlag
}

// ClearDrawFlag is called by the host after it consumes a frame.
func (vm *VM) ClearDrawFlag() {
	vm.drawFlag = false
}

// WaitingForKeyPress reports whether the machine is stalled on FX0A.
func (vm *VM) WaitingForKeyPress() bool {
	return vm.waitingForKey
}

// KeyRegister returns the register FX0A will latch the next key press into.
func (vm *VM) KeyRegister() byte {
	return vm.keyRegister
}

// Speed returns the number of instructions executed per EmulateCycle call.
func (vm *VM) Speed() uint {
	return vm.speed
}

// SetSpeed sets the instructions-per-cycle multiplier, clamped to [MinSpeed, MaxSpeed].
func (vm *VM) SetSpeed(speed uint) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	vm.speed = speed
}

// Paused reports whether EmulateCycle is currently a no-op.
func (vm *VM) Paused() bool {
	return vm.paused
}

// SetPaused pauses or resumes the machine.
func (vm *VM) SetPaused(paused bool) {
	vm.paused = paused
}

// LastInstruction returns the opcode most recently executed.
func (vm *VM) LastInstruction() uint16 {
	return vm.lastInstruction
}
