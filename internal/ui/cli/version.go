package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelscan/internal/shared/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the modelscan version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("modelscan v%s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
