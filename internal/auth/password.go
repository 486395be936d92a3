package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input limit. Longer passwords are truncated
// the same way on hash and verify.
const MaxPasswordBytes = 72

func truncatePassword(pw string) []byte {
	b := []byte(pw)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncatePassword(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(pw)) == nil
}

// dummyHash is compared against when the email is unknown so a miss costs
// the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("dental-voice-api/no-such-admin")
	if err != nil {
		panic("auth: build dummy hash: " + err.Error())
	}
	return h
})
