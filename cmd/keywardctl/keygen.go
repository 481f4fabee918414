package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

var keygenCmd = &cobra.Command{
	Use:     "keygen",
	Short:   "Generate license keys",
	Example: `  # Generate five checksum keys
  keywardctl keygen --count 5

  # Generate a signed key valid for 30 days
  keywardctl keygen --format signed --expires 720h --master-key-file /secrets/master.key`,
	Args: cobra.NoArgs,
	RunE: keygenCmdRun,
}

type keygenFlags struct {
	count   int
	format  string
	typ     string
	expires time.Duration
	secret  secretFlags
}

var keygenArgs keygenFlags

func init() {
	keygenCmd.Flags().IntVarP(&keygenArgs.count, "count", "n", 1, "number of keys to generate")
	keygenCmd.Flags().StringVar(&keygenArgs.format, "format", licensekey.FormatChecksum, "key format: checksum or signed")
	keygenCmd.Flags().StringVar(&keygenArgs.typ, "type", "", "license type embedded in signed keys")
	keygenCmd.Flags().DurationVar(&keygenArgs.expires, "expires", 365*24*time.Hour, "validity embedded in signed keys")
	keygenArgs.secret.register(keygenCmd)
	rootCmd.AddCommand(keygenCmd)
}

func keygenCmdRun(cmd *cobra.Command, args []string) error {
	if keygenArgs.count < 1 || keygenArgs.count > 10000 {
		return errors.New("--count must be between 1 and 10000")
	}

	var signed *licensekey.SignedCodec
	if keygenArgs.format == licensekey.FormatSigned {
		codec, err := keygenArgs.secret.codec()
		if err != nil {
			return err
		}
		signed = codec
	}

	format, err := licensekey.ParseFormatName(keygenArgs.format, signed)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	opts := licensekey.GenerateOptions{
		Type:      keygenArgs.typ,
		IssuedAt:  now,
		ExpiresAt: now.Add(keygenArgs.expires),
	}

	for range keygenArgs.count {
		issued, err := format.Generate(opts)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		cmd.Printf("%s\t%s\t%s\n", issued.Key, issued.Checksum, issued.LookupID)
	}
	return nil
}
