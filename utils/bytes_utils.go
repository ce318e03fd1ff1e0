package utils

import (
	"encoding/hex"
	"strconv"
)

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// Decimal text form used inside hash pre-images.
func Uint64ToString(i uint64) string {
	return strconv.FormatUint(i, 10)
}

func Int64ToString(i int64) string {
	return strconv.FormatInt(i, 10)
}

// Shorten a digest for display, e.g. "abcdef0123..." for n = 10.
func ShortenHash(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
