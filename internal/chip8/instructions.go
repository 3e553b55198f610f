package chip8

import "fmt"

// Opcode handlers. fetch has already advanced the PC past the instruction
// when these run, so jump, call, and skip handlers overwrite or further
// adjust it. Every PC and I write is masked to 12 bits; register writes are
// 8-bit by type.

// skip advances PC over the next instruction (3XNN, 4XNN, 5XY0, 9XY0, EX9E, EXA1).
func (vm *VM) skip() {
	vm.pc = (vm.pc + 2) & 0xFFF
}

// 00E0 -> Clear the screen
func (vm *VM) cls() {
	vm.display = [DisplayHeight][DisplayWidth]byte{}
	vm.drawFlag = true
}

// 00EE -> Return from a subroutine. Popping an empty stack is a fault: the
// error is logged and the machine state is left untouched.
func (vm *VM) ret() error {
	if vm.sp == 0 {
		return vm.stackFault("stack underflow on RET")
	}
	vm.sp--
	vm.pc = vm.stack[vm.sp] & 0xFFF
	return nil
}

// 1NNN -> Jump to address NNN
func (vm *VM) jp(nnn uint16) {
	vm.pc = nnn
}

// 2NNN -> Execute subroutine starting at address NNN. Pushing onto a full
// stack is a fault: the error is logged, nothing is pushed, and PC stays at
// the instruction after the CALL.
func (vm *VM) call(nnn uint16) error {
	if vm.sp == StackDepth {
		return vm.stackFault("stack overflow on CALL")
	}
	vm.stack[vm.sp] = vm.pc
	vm.sp++
	vm.pc = nnn
	return nil
}

// 3XNN -> Skip the following instruction if VX == NN
func (vm *VM) seNN(x, nn byte) {
	if vm.v[x] == nn {
		vm.skip()
	}
}

// 4XNN -> Skip the following instruction if VX != NN
func (vm *VM) sneNN(x, nn byte) {
	if vm.v[x] != nn {
		vm.skip()
	}
}

// 5XY0 -> Skip the following instruction if VX == VY
func (vm *VM) seXY(x, y byte) {
	if vm.v[x] == vm.v[y] {
		vm.skip()
	}
}

// 6XNN -> Store number NN in register VX
func (vm *VM) ldNN(x, nn byte) {
	vm.v[x] = nn
}

// 7XNN -> Add the value NN to register VX. VF is untouched.
func (vm *VM) addNN(x, nn byte) {
	vm.v[x] += nn
}

// 8XY0 -> Store the value of register VY in register VX
func (vm *VM) ldXY(x, y byte) {
	vm.v[x] = vm.v[y]
}

// 8XY1 -> Set VX to VX OR VY
func (vm *VM) or(x, y byte) {
	vm.v[x] |= vm.v[y]
}

// 8XY2 -> Set VX to VX AND VY
func (vm *VM) and(x, y byte) {
	vm.v[x] &= vm.v[y]
}

// 8XY3 -> Set VX to VX XOR VY
func (vm *VM) xor(x, y byte) {
	vm.v[x] ^= vm.v[y]
}

// 8XY4 -> Add the value of register VY to register VX.
// VF is set to 01 if a carry occurs, 00 otherwise. The flag write happens
// after the sum lands so the flag wins when X is F.
func (vm *VM) addXY(x, y byte) {
	sum := uint16(vm.v[x]) + uint16(vm.v[y])
	vm.v[x] = byte(sum)
	if sum > 0xFF {
		vm.v[0xF] = 1
	} else {
		vm.v[0xF] = 0
	}
}

// 8XY5 -> Subtract the value of register VY from register VX.
// VF is set to 01 if VX > VY before the subtraction, 00 otherwise.
func (vm *VM) subXY(x, y byte) {
	vx, vy := vm.v[x], vm.v[y]
	if vx > vy {
		vm.v[0xF] = 1
	} else {
		vm.v[0xF] = 0
	}
	vm.v[x] = vx - vy
}

// 8XY6 -> Shift VX right one bit; VF receives the bit shifted out.
// With the ShiftSourceY quirk VY is copied into VX first.
func (vm *VM) shr(x, y byte) {
	if vm.quirks.ShiftSourceY {
		vm.v[x] = vm.v[y]
	}
	vx := vm.v[x]
	vm.v[0xF] = vx & 0x01
	vm.v[x] = vx >> 1
}

// 8XY7 -> Set register VX to the value of VY minus VX.
// VF is set to 01 if VY > VX before the subtraction, 00 otherwise.
func (vm *VM) subn(x, y byte) {
	vx, vy := vm.v[x], vm.v[y]
	if vy > vx {
		vm.v[0xF] = 1
	} else {
		vm.v[0xF] = 0
	}
	vm.v[x] = vy - vx
}

// 8XYE -> Shift VX left one bit; VF receives the bit shifted out.
// With the ShiftSourceY quirk VY is copied into VX first.
func (vm *VM) shl(x, y byte) {
	if vm.quirks.ShiftSourceY {
		vm.v[x] = vm.v[y]
	}
	vx := vm.v[x]
	vm.v[0xF] = (vx & 0x80) >> 7
	vm.v[x] = vx << 1
}

// 9XY0 -> Skip the following instruction if VX != VY
func (vm *VM) sneXY(x, y byte) {
	if vm.v[x] != vm.v[y] {
		vm.skip()
	}
}

// ANNN -> Store memory address NNN in the index register
func (vm *VM) ldI(nnn uint16) {
	vm.i = nnn
}

// BNNN -> Jump to address NNN + V0
func (vm *VM) jpV0(nnn uint16) {
	vm.pc = (nnn + uint16(vm.v[0])) & 0xFFF
}

// CXNN -> Set VX to a uniform random byte masked with NN
func (vm *VM) rnd(x, nn byte) {
	vm.v[x] = byte(vm.rng.Intn(0x100)) & nn
}

// DXYN -> Draw an 8xN sprite from memory at I to position (VX, VY), XORing
// it into the framebuffer. VF is set to 01 if any set pixel is flipped off
// (collision), 00 otherwise. The sprite wraps on both axes.
func (vm *VM) drw(x, y, n byte) {
	px0 := uint16(vm.v[x])
	py0 := uint16(vm.v[y])
	vm.v[0xF] = 0

	for row := uint16(0); row < uint16(n); row++ {
		sprite := vm.memory[(vm.i+row)&0xFFF]
		for col := uint16(0); col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			px := (px0 + col) % DisplayWidth
			py := (py0 + row) % DisplayHeight
			if vm.display[py][px] == 1 {
				vm.v[0xF] = 1
			}
			vm.display[py][px] ^= 1
		}
	}

	vm.drawFlag = true
}

// EX9E -> Skip the following instruction if the key indexed by VX is pressed
func (vm *VM) skp(x byte) {
	if vm.keys[vm.v[x]&0xF] {
		vm.skip()
	}
}

// EXA1 -> Skip the following instruction if the key indexed by VX is not pressed
func (vm *VM) sknp(x byte) {
	if !vm.keys[vm.v[x]&0xF] {
		vm.skip()
	}
}

// FX07 -> Store the current value of the delay timer in register VX
func (vm *VM) ldVxDT(x byte) {
	vm.v[x] = vm.delayTimer
}

// FX0A -> Suspend instruction fetch until a key is pressed; the key index
// is latched into VX by KeyPress. PC is already past this instruction, so
// execution resumes at the next one. Timers keep ticking while suspended.
func (vm *VM) waitKey(x byte) {
	vm.waitingForKey = true
	vm.keyRegister = x
}

// FX15 -> Set the delay timer to the value of register VX
func (vm *VM) ldDTVx(x byte) {
	vm.delayTimer = vm.v[x]
}

// FX18 -> Set the sound timer to the value of register VX
func (vm *VM) ldSTVx(x byte) {
	vm.soundTimer = vm.v[x]
}

// FX1E -> Add the value of register VX to the index register. On overflow
// past 0xFFF, VF is set to 01 and I wraps into the 12-bit range.
func (vm *VM) addI(x byte) {
	i := vm.i + uint16(vm.v[x])
	if i > 0xFFF {
		vm.v[0xF] = 1
		i &= 0xFFF
	}
	vm.i = i
}

// FX29 -> Point the index register at the font sprite for the hex digit in VX
func (vm *VM) ldF(x byte) {
	vm.i = uint16(vm.v[x]&0xF) * 5
}

// FX33 -> Store the binary-coded decimal equivalent of VX at I, I+1, and I+2
func (vm *VM) bcd(x byte) {
	vm.memory[vm.i&0xFFF] = vm.v[x] / 100
	vm.memory[(vm.i+1)&0xFFF] = (vm.v[x] / 10) % 10
	vm.memory[(vm.i+2)&0xFFF] = vm.v[x] % 10
}

// FX55 -> Store registers V0 through VX inclusive in memory starting at I.
// I is left unchanged unless the IndexIncrement quirk is on.
func (vm *VM) saveRegs(x byte) {
	for r := uint16(0); r <= uint16(x); r++ {
		vm.memory[(vm.i+r)&0xFFF] = vm.v[r]
	}
	if vm.quirks.IndexIncrement {
		vm.i = (vm.i + uint16(x) + 1) & 0xFFF
	}
}

// FX65 -> Fill registers V0 through VX inclusive from memory starting at I.
// I is left unchanged unless the IndexIncrement quirk is on.
func (vm *VM) loadRegs(x byte) {
	for r := uint16(0); r <= uint16(x); r++ {
		vm.v[r] = vm.memory[(vm.i+r)&0xFFF]
	}
	if vm.quirks.IndexIncrement {
		vm.i = (vm.i + uint16(x) + 1) & 0xFFF
	}
}

func (vm *VM) stackFault(msg string) error {
	return fmt.Errorf("%s: sp=%d pc=0x%03X", msg, vm.sp, vm.pc)
}
