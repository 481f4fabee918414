package licensekey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SystemInfo is the hardware description a client loader reports.
type SystemInfo struct {
	CPUID             string `json:"cpuId"`
	MotherboardSerial string `json:"motherboardSerial"`
	DiskSerial        string `json:"diskSerial"`
	MACAddress        string `json:"macAddress"`
	SystemUUID        string `json:"systemUUID"`
}

// IsZero reports whether no field was supplied.
func (s SystemInfo) IsZero() bool {
	return s == SystemInfo{}
}

// DeriveHWID fingerprints the hardware description: the first 32 hex chars of
// SHA-256 over the pipe-joined fields.
func DeriveHWID(info SystemInfo) string {
	combined := strings.Join([]string{
		info.CPUID,
		info.MotherboardSerial,
		info.DiskSerial,
		info.MACAddress,
		info.SystemUUID,
	}, "|")
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])[:32]
}
