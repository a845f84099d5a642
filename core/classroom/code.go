package classroom

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// CodeLen is the length of a shareable class join code.
const CodeLen = 6

// codeAlphabet deliberately excludes lowercase: codes are stored and
// compared in uppercase; input is normalized first.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a CodeLen-character join code from a
// cryptographically random source. Global uniqueness is enforced by the
// storage unique constraint, not here; callers retry on collision.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLen)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "generating class code")
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeCode uppercases and trims a user-supplied join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}
