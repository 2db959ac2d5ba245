package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher builds a hasher for the configured cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash hashes a plaintext password. bcrypt draws a fresh salt on every call.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash.
func (h *Hasher) Verify(password, hashed string) bool {
	return ComparePassword(hashed, password) == nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// MeasureCost returns how long a single hash takes at the given cost.
func MeasureCost(cost int) (time.Duration, error) {
	start := time.Now()
	if _, err := bcrypt.GenerateFromPassword([]byte("password"), cost); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// CalibrateCost finds the lowest cost whose hash time reaches target and returns one
// above it, leaving headroom for faster hardware. measure is usually MeasureCost.
func CalibrateCost(target time.Duration, measure func(int) (time.Duration, error)) (int, error) {
	if target <= 0 {
		return 0, errors.New("target must be positive")
	}
	for cost := bcrypt.MinCost; cost < bcrypt.MaxCost; cost++ {
		elapsed, err := measure(cost)
		if err != nil {
			return 0, err
		}
		if elapsed >= target {
			return cost + 1, nil
		}
	}
	return bcrypt.MaxCost, nil
}
