package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cat <image> <path>",
		Short:        "Print a file's contents from a FAT32 image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			vol, dev, err := mountImage(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			parentPath, name := splitParent(args[1])
			dir, err := resolveDir(vol, parentPath)
			if err != nil {
				return err
			}
			f, err := dir.OpenFile(name)
			if err != nil {
				return err
			}
			buf := make([]byte, f.Len())
			n, err := f.Read(buf)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(buf[:n])
			return err
		},
	}
	return cmd
}
