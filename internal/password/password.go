package password

import "golang.org/x/crypto/bcrypt"

// Hash encrypts a plaintext password with bcrypt.
func Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Verify compares a plaintext password against a stored hash.
func Verify(hash string, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}
