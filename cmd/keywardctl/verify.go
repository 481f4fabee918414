package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [KEY]",
	Short: "Verify a license key offline",
	Long:  `Checksum keys are checked for structure and, with --checksum, against a
stored checksum. Signed keys are checked for expiry and signature.`,
	Example: `  # Verify a checksum key against its stored checksum
  keywardctl verify bcwtfK7M2P9QXR4TZ8VHN3WJ6CDYFGAB --checksum 5f1c...

  # Verify a signed key
  keywardctl verify STD-1A2B3C4D-M5X8Q2-N1Y7R4-9F8E7D6C --master-key-file /secrets/master.key`,
	Args: cobra.ExactArgs(1),
	RunE: verifyCmdRun,
}

type verifyFlags struct {
	checksum string
	secret   secretFlags
}

var verifyArgs verifyFlags

func init() {
	verifyCmd.Flags().StringVar(&verifyArgs.checksum, "checksum", "", "stored checksum to compare a checksum key against")
	verifyArgs.secret.register(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func verifyCmdRun(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])

	if !strings.Contains(key, "-") {
		return verifyChecksumKey(cmd, key)
	}

	codec, err := verifyArgs.secret.codec()
	if err != nil {
		return err
	}
	fields, err := codec.Validate(key, time.Now())
	if err != nil {
		return fmt.Errorf("license key rejected: %w", err)
	}

	cmd.Printf("✔ signed %s license issued %s\n", strings.ToUpper(fields.Type), fields.Created.Format(time.RFC3339))
	cmd.Printf("✔ valid until %s\n", fields.Expires.Format(time.RFC3339))
	return nil
}

func verifyChecksumKey(cmd *cobra.Command, key string) error {
	codec := licensekey.KeyCodec{}
	if !codec.ValidateFormat(key) {
		return errors.New("license key rejected: invalid key structure")
	}
	cmd.Println("✔ key structure is valid")

	if verifyArgs.checksum == "" {
		cmd.Printf("  checksum %s\n", codec.Checksum(key))
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(codec.Checksum(key)), []byte(verifyArgs.checksum)) != 1 {
		return errors.New("license key rejected: checksum mismatch")
	}
	cmd.Println("✔ checksum matches")
	return nil
}
