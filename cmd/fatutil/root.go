package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fatutil",
		Short: "fatutil formats, mounts and inspects FAT32 disk images",
	}
	root.AddCommand(newFormatCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newCatCmd())
	return root
}
