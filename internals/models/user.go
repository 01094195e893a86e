package models

import "golang.org/x/crypto/bcrypt"

type User struct {
	Id           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"` // bcrypt digest, never plaintext
}

// Identity returns the stable id the session layer keys on.
func (u *User) Identity() int64 { return u.Id }

// CheckPassword reports whether plain matches the stored digest.
// A wrong password is a plain false, never an error.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// HashPassword produces the digest stored in PasswordHash.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
