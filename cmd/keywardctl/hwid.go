package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

var hwidCmd = &cobra.Command{
	Use:     "hwid",
	Short:   "Derive the hardware id for a system description",
	Example: `  keywardctl hwid --cpu-id BFEBFBFF000906EA --mac 00:1A:2B:3C:4D:5E`,
	Args:    cobra.NoArgs,
	RunE:    hwidCmdRun,
}

var hwidArgs licensekey.SystemInfo

func init() {
	hwidCmd.Flags().StringVar(&hwidArgs.CPUID, "cpu-id", "", "processor id")
	hwidCmd.Flags().StringVar(&hwidArgs.MotherboardSerial, "motherboard-serial", "", "motherboard serial number")
	hwidCmd.Flags().StringVar(&hwidArgs.DiskSerial, "disk-serial", "", "system disk serial number")
	hwidCmd.Flags().StringVar(&hwidArgs.MACAddress, "mac", "", "primary MAC address")
	hwidCmd.Flags().StringVar(&hwidArgs.SystemUUID, "system-uuid", "", "SMBIOS system UUID")
	rootCmd.AddCommand(hwidCmd)
}

func hwidCmdRun(cmd *cobra.Command, args []string) error {
	if hwidArgs.IsZero() {
		return errors.New("at least one hardware field is required")
	}
	cmd.Println(licensekey.DeriveHWID(hwidArgs))
	return nil
}
