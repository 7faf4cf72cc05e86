package main

import (
	"fmt"

	"github.com/embeddedgo/fat32"
	"github.com/spf13/cobra"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ls <image> [path]",
		Short:        "List a directory in a FAT32 image",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			vol, dev, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			dir, err := resolveDir(vol, path)
			if err != nil {
				return err
			}
			return dir.ForEachFile(func(info fat32.FileInfo) bool {
				kind := "-"
				if info.IsDir {
					kind = "d"
				}
				fmt.Printf("%s %8s %12s %s\n", kind, info.HumanSize(), info.HumanModTime(), info.Name)
				return true
			})
		},
	}
	return cmd
}
