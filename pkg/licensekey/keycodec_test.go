package licensekey_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	t.Run("keys are unique and well formed", func(t *testing.T) {
		const n = 10000
		seen := make(map[string]struct{}, n)

		for range n {
			key, err := licensekey.GenerateKey()
			require.NoError(t, err)
			require.Len(t, key, licensekey.KeyLength)
			require.True(t, licensekey.ValidateKeyFormat(key), "generated key %q must validate", key)

			_, dup := seen[key]
			require.False(t, dup, "duplicate key %q", key)
			seen[key] = struct{}{}
		}
	})

	t.Run("body uses only the safe alphabet", func(t *testing.T) {
		key, err := licensekey.GenerateKey()
		require.NoError(t, err)

		for _, r := range strings.TrimPrefix(key, licensekey.KeyPrefix) {
			require.Contains(t, licensekey.KeyAlphabet, string(r))
		}
	})
}

func TestValidateKeyFormat(t *testing.T) {
	t.Parallel()

	valid := "bcwtf" + strings.Repeat("A", 27)

	cases := map[string]struct {
		key  string
		want bool
	}{
		"valid":            {key: valid, want: true},
		"wrong prefix":     {key: "bcwtg" + strings.Repeat("A", 27)},
		"too short":        {key: "bcwtf" + strings.Repeat("A", 26)},
		"too long":         {key: "bcwtf" + strings.Repeat("A", 28)},
		"ambiguous zero":   {key: "bcwtf" + strings.Repeat("A", 26) + "0"},
		"ambiguous letter": {key: "bcwtf" + strings.Repeat("A", 26) + "O"},
		"lowercase body":   {key: "bcwtf" + strings.Repeat("a", 27)},
		"hyphenated":       {key: "bcwtf-" + strings.Repeat("A", 26)},
		"empty":            {key: ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, licensekey.ValidateKeyFormat(tc.key))
		})
	}
}

func TestChecksum(t *testing.T) {
	t.Parallel()

	t.Run("is stable and two upper hex chars", func(t *testing.T) {
		key, err := licensekey.GenerateKey()
		require.NoError(t, err)

		sum := licensekey.Checksum(key)
		require.Len(t, sum, 2)
		require.Equal(t, strings.ToUpper(sum), sum)
		require.Equal(t, sum, licensekey.Checksum(key))
	})

	t.Run("ignores hyphens", func(t *testing.T) {
		require.Equal(t, licensekey.Checksum("ABCD1234"), licensekey.Checksum("ABCD-1234"))
	})

	t.Run("single character mutations usually change the checksum", func(t *testing.T) {
		changed, total := 0, 0
		for range 200 {
			key, err := licensekey.GenerateKey()
			require.NoError(t, err)
			original := licensekey.Checksum(key)

			for i := len(licensekey.KeyPrefix); i < len(key); i += 5 {
				mutated := mutateAt(key, i)
				require.NotEqual(t, key, mutated)
				total++
				if licensekey.Checksum(mutated) != original {
					changed++
				}
			}
		}
		// An 8-bit digest collides roughly once in 256 mutations.
		require.Greater(t, float64(changed)/float64(total), 0.95)
	})
}

func TestKeyCodecFormat(t *testing.T) {
	t.Parallel()

	var codec licensekey.Format = licensekey.KeyCodec{}
	issued, err := codec.Generate(licensekey.GenerateOptions{})
	require.NoError(t, err)

	require.Equal(t, licensekey.FormatChecksum, codec.Name())
	require.True(t, codec.ValidateFormat(issued.Key))
	require.Equal(t, licensekey.Checksum(issued.Key), issued.Checksum)
	require.Equal(t, issued.Key[:13], issued.LookupID)
	require.Equal(t, issued.LookupID, codec.LookupID(issued.Key))

	mutated := mutateAt(issued.Key, len(issued.Key)-1)
	require.Equal(t, issued.LookupID, codec.LookupID(mutated), "lookup id only covers the public prefix")
}

func TestDeriveHWID(t *testing.T) {
	t.Parallel()

	info := licensekey.SystemInfo{
		CPUID:             "BFEBFBFF000906EA",
		MotherboardSerial: "MB-1234",
		DiskSerial:        "S3Z9NB0K",
		MACAddress:        "00:1A:2B:3C:4D:5E",
		SystemUUID:        "4C4C4544-0042-3510-8051-B7C04F4E3732",
	}

	hwid := licensekey.DeriveHWID(info)
	require.Len(t, hwid, 32)
	require.Equal(t, hwid, licensekey.DeriveHWID(info))

	info.DiskSerial = "other"
	require.NotEqual(t, hwid, licensekey.DeriveHWID(info))
	require.True(t, licensekey.SystemInfo{}.IsZero())
}

func mutateAt(key string, i int) string {
	b := []byte(key)
	idx := strings.IndexByte(licensekey.KeyAlphabet, b[i])
	b[i] = licensekey.KeyAlphabet[(idx+1)%len(licensekey.KeyAlphabet)]
	return string(b)
}
