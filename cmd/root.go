package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// currentReleaseVersion is used to print the version the user currently has downloaded
const currentReleaseVersion = "v0.1.0"

// rootCmd is the base for all commands.
var rootCmd = &cobra.Command{
	Use:   "c8 [command]",
	Short: "c8 is a CHIP-8 emulator",
	Long:  "c8 is a CHIP-8 emulator: run ROMs in a window or disassemble them to the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `c8 help` for more information")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs c8 according to the user's command/subcommand/flags
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
