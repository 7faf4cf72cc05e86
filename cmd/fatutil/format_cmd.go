package main

import (
	"fmt"

	"github.com/embeddedgo/fat32"
	"github.com/spf13/cobra"
)

func newFormatCmd() *cobra.Command {
	var sectorSize, sectorsPerCluster int
	var sizeMB int
	var label string

	cmd := &cobra.Command{
		Use:          "format <image>",
		Short:        "Create a fresh FAT32 image file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			totalSectors := int64(sizeMB) * 1024 * 1024 / int64(sectorSize)
			dev, err := createFileDevice(args[0], int64(sectorSize), totalSectors)
			if err != nil {
				return err
			}
			defer dev.Close()

			cfg := fat32.FormatConfig{
				SectorSize:        uint16(sectorSize),
				SectorsPerCluster: uint8(sectorsPerCluster),
				VolumeLabel:       label,
				VolumeID:          0x12345678,
			}
			if err := (fat32.Formatter{}).Format(dev, cfg, uint32(totalSectors)); err != nil {
				return err
			}
			fmt.Printf("formatted %s: %d MB, %d bytes/sector, %d sectors/cluster\n",
				args[0], sizeMB, sectorSize, sectorsPerCluster)
			return nil
		},
	}
	cmd.Flags().IntVar(&sectorSize, "sector-size", 512, "bytes per sector")
	cmd.Flags().IntVar(&sectorsPerCluster, "cluster-size", 8, "sectors per cluster")
	cmd.Flags().IntVar(&sizeMB, "size-mb", 64, "image size in megabytes")
	cmd.Flags().StringVar(&label, "label", "FATUTIL", "volume label")
	return cmd
}
