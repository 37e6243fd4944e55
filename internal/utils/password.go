package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a staff password for the staff_users table.  A cost
// outside bcrypt's accepted range (BCRYPT_COST misconfigured) is clamped
// rather than failing the admin bootstrap.
func HashPassword(plain string, cost int) (string, error) {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches a stored staff hash.  A
// malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
