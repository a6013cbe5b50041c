package fmuresults

import (
	"crypto/md5"
	"regexp"

	"github.com/google/uuid"
)

var (
	md5HexPattern     = regexp.MustCompile(`^[a-f0-9]{32}$`)
	versionStrPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(\S*)$`)
)

// IsMD5Hex reports whether s is a valid lowercase hexadecimal MD5 digest.
func IsMD5Hex(s string) bool {
	return md5HexPattern.MatchString(s)
}

// IsVersionStr reports whether s looks like a semantic version string.
func IsVersionStr(s string) bool {
	return versionStrPattern.MatchString(s)
}

// IsUUIDStr reports whether s parses as a UUID.
func IsUUIDStr(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// DeterministicUUID derives a stable UUID from an arbitrary string by
// interpreting the MD5 digest of the string as UUID bytes. Equal inputs
// always yield equal identifiers.
func DeterministicUUID(s string) uuid.UUID {
	sum := md5.Sum([]byte(s))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		// 16 bytes can always be interpreted as a UUID.
		panic(err)
	}
	return id
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
