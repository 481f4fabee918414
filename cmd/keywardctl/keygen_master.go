package main

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
)

var keygenMasterCmd = &cobra.Command{
	Use:   "master",
	Short: "Generate master key material for KEYWARD_MASTER_KEY",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		cmd.Println(key)
		return nil
	},
}

func init() {
	keygenCmd.AddCommand(keygenMasterCmd)
}
