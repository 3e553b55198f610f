package chip8

import "fmt"

// Disassemble renders an opcode as a Cowgod-style mnemonic, e.g.
// "LD V3, 0A" or "DRW V0, V1, 5". It recognizes exactly the opcode set the
// executor does; anything else comes back as "UNKNOWN (0x....)".
func Disassemble(opcode uint16) string {
	x := byte(opcode>>8) & 0x0F
	y := byte(opcode>>4) & 0x0F
	n := byte(opcode) & 0x0F
	nn := byte(opcode)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		switch nn {
		case 0xE0:
			return "CLS"
		case 0xEE:
			return "RET"
		}
	case 0x1000:
		return fmt.Sprintf("JP %03X", nnn)
	case 0x2000:
		return fmt.Sprintf("CALL %03X", nnn)
	case 0x3000:
		return fmt.Sprintf("SE V%X, %02X", x, nn)
	case 0x4000:
		return fmt.Sprintf("SNE V%X, %02X", x, nn)
	case 0x5000:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6000:
		return fmt.Sprintf("LD V%X, %02X", x, nn)
	case 0x7000:
		return fmt.Sprintf("ADD V%X, %02X", x, nn)
	case 0x8000:
		switch n {
		case 0x0:
			return fmt.Sprintf("LD V%X, V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR V%X, V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND V%X, V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR V%X, V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD V%X, V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB V%X, V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR V%X", x)
		case 0x7:
			return fmt.Sprintf("SUBN V%X, V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL V%X", x)
		}
	case 0x9000:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA000:
		return fmt.Sprintf("LD I, %03X", nnn)
	case 0xB000:
		return fmt.Sprintf("JP V0, %03X", nnn)
	case 0xC000:
		return fmt.Sprintf("RND V%X, %02X", x, nn)
	case 0xD000:
		return fmt.Sprintf("DRW V%X, V%X, %X", x, y, n)
	case 0xE000:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF000:
		switch nn {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD I, V%X", x)
		case 0x29:
			return fmt.Sprintf("LD F, V%X", x)
		case 0x33:
			return fmt.Sprintf("LD B, V%X", x)
		case 0x55:
			return fmt.Sprintf("LD [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}
	return fmt.Sprintf("UNKNOWN (0x%04X)", opcode)
}

// Describe renders an opcode as a human-readable description of its effect.
// It recognizes the same opcode set as Disassemble and the executor.
func Describe(opcode uint16) string {
	x := byte(opcode>>8) & 0x0F
	y := byte(opcode>>4) & 0x0F
	n := byte(opcode) & 0x0F
	nn := byte(opcode)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		switch nn {
		case 0xE0:
			return "Clear the screen."
		case 0xEE:
			return "Return from the current subroutine."
		}
	case 0x1000:
		return fmt.Sprintf("Jump to address 0x%03X.", nnn)
	case 0x2000:
		return fmt.Sprintf("Call the subroutine at address 0x%03X.", nnn)
	case 0x3000:
		return fmt.Sprintf("Skip the next instruction if V%X equals 0x%02X.", x, nn)
	case 0x4000:
		return fmt.Sprintf("Skip the next instruction if V%X does not equal 0x%02X.", x, nn)
	case 0x5000:
		if n == 0 {
			return fmt.Sprintf("Skip the next instruction if V%X equals V%X.", x, y)
		}
	case 0x6000:
		return fmt.Sprintf("Set V%X to 0x%02X.", x, nn)
	case 0x7000:
		return fmt.Sprintf("Add 0x%02X to V%X without touching the carry flag.", nn, x)
	case 0x8000:
		switch n {
		case 0x0:
			return fmt.Sprintf("Set V%X to the value of V%X.", x, y)
		case 0x1:
			return fmt.Sprintf("Set V%X to V%X OR V%X.", x, x, y)
		case 0x2:
			return fmt.Sprintf("Set V%X to V%X AND V%X.", x, x, y)
		case 0x3:
			return fmt.Sprintf("Set V%X to V%X XOR V%X.", x, x, y)
		case 0x4:
			return fmt.Sprintf("Add V%X to V%X; VF is set to 1 on carry, 0 otherwise.", y, x)
		case 0x5:
			return fmt.Sprintf("Subtract V%X from V%X; VF is set to 1 if V%X > V%X, 0 otherwise.", y, x, x, y)
		case 0x6:
			return fmt.Sprintf("Shift V%X right one bit; VF receives the bit shifted out.", x)
		case 0x7:
			return fmt.Sprintf("Set V%X to V%X minus V%X; VF is set to 1 if V%X > V%X, 0 otherwise.", x, y, x, y, x)
		case 0xE:
			return fmt.Sprintf("Shift V%X left one bit; VF receives the bit shifted out.", x)
		}
	case 0x9000:
		if n == 0 {
			return fmt.Sprintf("Skip the next instruction if V%X does not equal V%X.", x, y)
		}
	case 0xA000:
		return fmt.Sprintf("Set the index register I to 0x%03X.", nnn)
	case 0xB000:
		return fmt.Sprintf("Jump to address 0x%03X plus V0.", nnn)
	case 0xC000:
		return fmt.Sprintf("Set V%X to a random byte masked with 0x%02X.", x, nn)
	case 0xD000:
		return fmt.Sprintf("Draw the 8x%d sprite at memory location I at position (V%X, V%X); VF is set to 1 on collision.", n, x, y)
	case 0xE000:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("Skip the next instruction if the key indexed by V%X is pressed.", x)
		case 0xA1:
			return fmt.Sprintf("Skip the next instruction if the key indexed by V%X is not pressed.", x)
		}
	case 0xF000:
		switch nn {
		case 0x07:
			return fmt.Sprintf("Set V%X to the value of the delay timer.", x)
		case 0x0A:
			return fmt.Sprintf("Wait for a key press and store the key index in V%X.", x)
		case 0x15:
			return fmt.Sprintf("Set the delay timer to V%X.", x)
		case 0x18:
			return fmt.Sprintf("Set the sound timer to V%X.", x)
		case 0x1E:
			return fmt.Sprintf("Add V%X to the index register I.", x)
		case 0x29:
			return fmt.Sprintf("Point I at the font sprite for the hex digit in V%X.", x)
		case 0x33:
			return fmt.Sprintf("Store the binary-coded decimal of V%X at I, I+1, and I+2.", x)
		case 0x55:
			return fmt.Sprintf("Store registers V0 through V%X in memory starting at I.", x)
		case 0x65:
			return fmt.Sprintf("Fill registers V0 through V%X from memory starting at I.", x)
		}
	}
	return fmt.Sprintf("UNKNOWN (0x%04X)", opcode)
}
