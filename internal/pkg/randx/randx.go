/*
Package randx generates identifiers and random names.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the character set used for random name suffixes.
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 character set.
	Base62Len = int64(len(Base62Chars))
)

// ConnectionID generates the opaque identifier assigned to one live
// connection. IDs are unique per connection, not per user: one user may hold
// several at once.
func ConnectionID() string {
	return uuid.New().String()
}

// Nickname generates a random display name with a "User_" prefix and six
// Base62 characters, used when an account has no nickname set.
func Nickname() (string, error) {
	const suffixLength = 6
	result := make([]byte, suffixLength)

	for i := range suffixLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for nickname: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return "User_" + string(result), nil
}
