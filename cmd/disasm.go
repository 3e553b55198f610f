package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/c8/internal/chip8"
)

// disasmCmd prints a disassembly listing of a ROM without running it.
var disasmCmd = &cobra.Command{
	Use:   "disasm `path/to/rom`",
	Short: "disassemble a CHIP-8 ROM",
	Long:  "Run `c8 disasm path/to/rom` to print an address/opcode/mnemonic listing of the ROM",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func runDisasm(cmd *cobra.Command, args []string) error {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read rom file %s: %w", args[0], err)
	}
	if len(rom) > chip8.MaxROMSize {
		return fmt.Errorf("rom is too large: %d bytes, max size is %d bytes", len(rom), chip8.MaxROMSize)
	}

	for offset := 0; offset+1 < len(rom); offset += 2 {
		opcode := uint16(rom[offset])<<8 | uint16(rom[offset+1])
		addr := chip8.EntryPoint + offset
		fmt.Printf("%03X  %04X  %-16s ; %s\n", addr, opcode, chip8.Disassemble(opcode), chip8.Describe(opcode))
	}
	if len(rom)%2 != 0 {
		fmt.Printf("%03X  %02X    .byte\n", chip8.EntryPoint+len(rom)-1, rom[len(rom)-1])
	}
	return nil
}
