package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

var signCmd = &cobra.Command{
	Use:     "sign",
	Short:   "Issue a signed license key",
	Example: `  # Sign a PRO license that expires at the end of the year
  keywardctl sign --type PRO --expires-at 2026-12-31T23:59:59Z --license-secret "$SECRET"`,
	Args: cobra.NoArgs,
	RunE: signCmdRun,
}

type signFlags struct {
	typ       string
	expires   time.Duration
	expiresAt string
	secret    secretFlags
}

var signArgs signFlags

func init() {
	signCmd.Flags().StringVar(&signArgs.typ, "type", "STD", "license type, up to 4 letters or digits")
	signCmd.Flags().DurationVar(&signArgs.expires, "expires", 365*24*time.Hour, "validity from now")
	signCmd.Flags().StringVar(&signArgs.expiresAt, "expires-at", "", "absolute expiry in RFC3339, overrides --expires")
	signArgs.secret.register(signCmd)
	rootCmd.AddCommand(signCmd)
}

func signCmdRun(cmd *cobra.Command, args []string) error {
	codec, err := signArgs.secret.codec()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	expires := now.Add(signArgs.expires)
	if signArgs.expiresAt != "" {
		expires, err = time.Parse(time.RFC3339, signArgs.expiresAt)
		if err != nil {
			return fmt.Errorf("invalid --expires-at: %w", err)
		}
	}
	if !expires.After(now) {
		return errors.New("expiry must be in the future")
	}

	issued, err := codec.Generate(licensekey.GenerateOptions{
		Type:      signArgs.typ,
		IssuedAt:  now,
		ExpiresAt: expires,
	})
	if err != nil {
		return err
	}

	cmd.Println(issued.Key)
	return nil
}
