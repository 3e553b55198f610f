package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd returns the caller's installed c8 version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Retrieve the currently installed c8 version",
	Long:  "Run `c8 version` to get your current c8 version",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(currentReleaseVersion)
}
