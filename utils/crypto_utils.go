package utils

import (
	"crypto"
	_ "crypto/sha256"
)

// Length of a hex encoded SHA256 digest. A PoW difficulty above this can never be met.
const DIGEST_HEX_LEN = 64

// Hash message using SHA256
func SHA256(msg []byte) []byte {
	newhash := crypto.SHA256
	pssh := newhash.New()
	pssh.Write(msg)
	return pssh.Sum(nil)
}

// SHA256Hex returns the lowercase hex SHA256 digest of msg. Every hash in the chain goes through here.
func SHA256Hex(msg []byte) string {
	return BytesToHex(SHA256(msg))
}

// IsDigest reports whether s looks like a hex encoded SHA256 digest.
func IsDigest(s string) bool {
	if len(s) != DIGEST_HEX_LEN {
		return false
	}
	b, err := HexToBytes(s)
	return err == nil && len(b) == DIGEST_HEX_LEN/2
}
