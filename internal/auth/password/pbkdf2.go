package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Prefix identifies passlib pbkdf2-sha256 hashes:
// $pbkdf2-sha256$<rounds>$<salt>$<checksum>, salt and checksum in passlib's
// adapted base64 ('.' instead of '+', no padding).
const pbkdf2Prefix = "$pbkdf2-sha256$"

// adaptedBase64 decodes passlib's ab64 alphabet.
var adaptedBase64 = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./",
).WithPadding(base64.NoPadding)

func verifyPBKDF2(plaintext, hashed string) bool {
	parts := strings.Split(strings.TrimPrefix(hashed, "$"), "$")
	if len(parts) != 4 { //nolint:mnd
		return false
	}

	rounds, err := strconv.Atoi(parts[1])
	if err != nil || rounds < 1 {
		return false
	}

	salt, err := adaptedBase64.DecodeString(parts[2])
	if err != nil {
		return false
	}

	checksum, err := adaptedBase64.DecodeString(parts[3])
	if err != nil || len(checksum) == 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(plaintext), salt, rounds, len(checksum), sha256.New)

	return subtle.ConstantTimeCompare(derived, checksum) == 1
}
