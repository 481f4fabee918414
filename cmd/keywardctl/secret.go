package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/keyward/pkg/cryptox"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

// secretFlags resolve the signed-license secret the same way the server
// does: an explicit secret wins, otherwise it is derived from the master key.
type secretFlags struct {
	licenseSecret string
	masterKey     string
	masterKeyFile string
}

func (f *secretFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.licenseSecret, "license-secret", "",
		"signed license secret, defaults to $KEYWARD_LICENSE_SECRET")
	cmd.Flags().StringVar(&f.masterKey, "master-key", "",
		"master key material, defaults to $KEYWARD_MASTER_KEY")
	cmd.Flags().StringVar(&f.masterKeyFile, "master-key-file", "",
		"path to the master key file, defaults to $KEYWARD_MASTER_KEY_PATH")
}

func (f *secretFlags) codec() (*licensekey.SignedCodec, error) {
	secret := firstNonEmpty(f.licenseSecret, os.Getenv("KEYWARD_LICENSE_SECRET"))
	if secret != "" {
		return licensekey.NewSignedCodec([]byte(secret))
	}

	path := firstNonEmpty(f.masterKeyFile, os.Getenv("KEYWARD_MASTER_KEY_PATH"))
	material := firstNonEmpty(f.masterKey, os.Getenv("KEYWARD_MASTER_KEY"))
	if path == "" && material == "" {
		return nil, errors.New("a license secret or master key is required for signed keys")
	}

	master, _, err := cryptox.LoadMasterKey(path, material)
	if err != nil {
		return nil, err
	}
	derived, err := cryptox.DeriveKey(master, cryptox.InfoSignedLicense, cryptox.MasterKeySize)
	if err != nil {
		return nil, err
	}
	return licensekey.NewSignedCodec(derived)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
