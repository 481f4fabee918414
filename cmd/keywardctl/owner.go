package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/jwtx"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage development owner tokens",
	Long: `keyward only verifies owner tokens. These commands stand in for the
account service when running keyward locally: generate a key pair, serve
the JWKS file from any static server, and mint tokens with it.`,
}

var ownerKeygenCmd = &cobra.Command{
	Use:     "keygen [KID]",
	Short:   "Generate an Ed25519 owner signing key and its JWKS",
	Example: `  keywardctl owner keygen dev-1 --output-dir ./keys`,
	Args:    cobra.ExactArgs(1),
	RunE:    ownerKeygenCmdRun,
}

var ownerTokenCmd = &cobra.Command{
	Use:     "token [SUBJECT]",
	Short:   "Mint an owner bearer token",
	Example: `  keywardctl owner token user-42 --key-file ./keys/dev-1.pem --kid dev-1 --issuer https://accounts.local`,
	Args:    cobra.ExactArgs(1),
	RunE:    ownerTokenCmdRun,
}

type ownerFlags struct {
	outputDir string
	keyFile   string
	kid       string
	username  string
	issuer    string
	audience  []string
	ttl       time.Duration
}

var ownerArgs ownerFlags

func init() {
	ownerKeygenCmd.Flags().StringVar(&ownerArgs.outputDir, "output-dir", ".", "directory for the key and JWKS files")

	ownerTokenCmd.Flags().StringVar(&ownerArgs.keyFile, "key-file", "", "PKCS#8 PEM private key")
	ownerTokenCmd.Flags().StringVar(&ownerArgs.kid, "kid", "", "key id published in the JWKS")
	ownerTokenCmd.Flags().StringVar(&ownerArgs.username, "username", "", "display name carried in the token")
	ownerTokenCmd.Flags().StringVar(&ownerArgs.issuer, "issuer", "", "issuer, must match KEYWARD_OWNER_ISSUER when set")
	ownerTokenCmd.Flags().StringSliceVar(&ownerArgs.audience, "audience", nil, "audience values")
	ownerTokenCmd.Flags().DurationVar(&ownerArgs.ttl, "ttl", jwtx.DefaultOwnerTokenTTL, "token lifetime")

	ownerCmd.AddCommand(ownerKeygenCmd, ownerTokenCmd)
	rootCmd.AddCommand(ownerCmd)
}

func ownerKeygenCmdRun(cmd *cobra.Command, args []string) error {
	kid := args[0]
	if kid == "" {
		return errors.New("key id is required")
	}

	if fi, err := os.Stat(ownerArgs.outputDir); err != nil {
		return fmt.Errorf("directory %s does not exist", ownerArgs.outputDir)
	} else if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", ownerArgs.outputDir)
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return err
	}
	signer, err := jwtx.NewSigner(kid, pemKey)
	if err != nil {
		return err
	}
	jwks, err := json.MarshalIndent(jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}}, "", "  ")
	if err != nil {
		return err
	}

	keyPath := filepath.Join(ownerArgs.outputDir, kid+".pem")
	if err := os.WriteFile(keyPath, pemKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	jwksPath := filepath.Join(ownerArgs.outputDir, kid+".jwks.json")
	if err := os.WriteFile(jwksPath, jwks, 0o644); err != nil {
		return fmt.Errorf("failed to write JWKS: %w", err)
	}

	cmd.Printf("✔ private key %s written to %s\n", signer.KID(), keyPath)
	cmd.Printf("✔ JWKS written to %s\n", jwksPath)
	return nil
}

func ownerTokenCmdRun(cmd *cobra.Command, args []string) error {
	subject := args[0]
	if subject == "" {
		return errors.New("subject is required")
	}
	if ownerArgs.keyFile == "" || ownerArgs.kid == "" {
		return errors.New("--key-file and --kid are required")
	}

	pemKey, err := os.ReadFile(ownerArgs.keyFile)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}
	signer, err := jwtx.NewSigner(ownerArgs.kid, pemKey)
	if err != nil {
		return err
	}

	claims := jwtx.NewOwnerClaims(subject, ownerArgs.username, ownerArgs.issuer,
		ownerArgs.audience, ownerArgs.ttl, time.Now().UTC())
	token, err := signer.Sign(claims)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	cmd.Println(token)
	return nil
}
