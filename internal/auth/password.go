package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// WarmDummy computes the throwaway hash used by CompareDummy. Only the first call has an
// effect.
func WarmDummy(cost int) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("coop-scheduler-dummy-password", cost)
	})
}

// CompareDummy burns the same bcrypt work as ComparePassword against a throwaway hash.
// Login calls it for unknown emails.
func CompareDummy(plain string, cost int) {
	WarmDummy(cost)
	_ = ComparePassword(dummyHash, plain)
}
