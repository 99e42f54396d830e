package hash

import "golang.org/x/crypto/bcrypt"

// DummyHash is compared against when no user matches an email, so unknown
// accounts cost the same as a wrong password.
var DummyHash, _ = HashPassword("not-a-real-password")

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is a
// mismatch, never an error.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
