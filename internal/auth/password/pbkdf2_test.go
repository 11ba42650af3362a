package password

import (
	"crypto/sha256"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
)

// encodePBKDF2 builds a passlib compatible hash.
func encodePBKDF2(plaintext string, salt []byte, rounds int) string {
	derived := pbkdf2.Key([]byte(plaintext), salt, rounds, sha256.Size, sha256.New)

	return pbkdf2Prefix + strconv.Itoa(rounds) + "$" +
		adaptedBase64.EncodeToString(salt) + "$" + adaptedBase64.EncodeToString(derived)
}
