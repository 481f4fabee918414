package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keyward/pkg/licensekey"
)

func TestHWIDCmd(t *testing.T) {
	output, err := executeCommand([]string{"hwid", "--cpu-id", "BFEBFBFF000906EA", "--mac", "00:1A:2B:3C:4D:5E"})
	require.NoError(t, err)

	want := licensekey.DeriveHWID(licensekey.SystemInfo{CPUID: "BFEBFBFF000906EA", MACAddress: "00:1A:2B:3C:4D:5E"})
	require.Equal(t, want, strings.TrimSpace(output))
	require.Len(t, want, 32)

	_, err = executeCommand([]string{"hwid"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one hardware field")
}
