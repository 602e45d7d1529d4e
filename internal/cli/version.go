package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the faro version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("faro", Version)
		},
	}
}
