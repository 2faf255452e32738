package user

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

const (
	codePrefixLen = 4
	codeSuffixLen = 5
	codeCharset   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the retries on a (theoretical) code collision.
	maxCodeAttempts = 5
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrCodeExists  = errors.New("invitation code already exists")
	ErrInvalidCode = errors.New("invalid invitation code")
)

// makeCode builds an invitation code as {rolePrefix}-{randomSuffix},
// eg. "TEAC-X7K2P" for a teacher.
func makeCode(role string) string {
	return rolePrefix(role) + "-" + randomSuffix(codeSuffixLen)
}

func rolePrefix(role string) string {
	prefix := strings.ToUpper(role)
	if len(prefix) > codePrefixLen {
		prefix = prefix[:codePrefixLen]
	}
	return prefix
}

func randomSuffix(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the system source is broken
			panic(err)
		}
		sb.WriteByte(codeCharset[idx.Int64()])
	}
	return sb.String()
}
