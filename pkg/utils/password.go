package utils

import "golang.org/x/crypto/bcrypt"

// Staff account passwords are stored as bcrypt hashes only, never
// reversibly.
const staffPasswordCost = 12

// HashPassword hashes a staff account password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), staffPasswordCost)
	return string(bytes), err
}

// ComparePassword reports whether the plain password matches the stored hash
func ComparePassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
