package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

const (
	orderIDPrefix   = "VS"
	orderIDLength   = 6
	orderIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderIDAttempts = 10
)

func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// reserveOrderID draws VS-prefixed codes until one is unused by both projects and checkouts.
func reserveOrderID(ctx context.Context, store *repository.Store) (string, error) {
	for i := 0; i < orderIDAttempts; i++ {
		suffix, err := randomString(orderIDAlphabet, orderIDLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate order id: %w", err)
		}
		id := orderIDPrefix + suffix

		taken, err := store.Projects.ExistsOrderID(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			taken, err = store.Checkouts.ExistsOrderID(ctx, id)
			if err != nil {
				return "", err
			}
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free order id after %d attempts: %w", orderIDAttempts, model.ErrConflict)
}

// IsOrderID reports whether s has the VS + 6 uppercase alphanumerics shape.
func IsOrderID(s string) bool {
	if len(s) != len(orderIDPrefix)+orderIDLength || s[:len(orderIDPrefix)] != orderIDPrefix {
		return false
	}
	for _, r := range s[len(orderIDPrefix):] {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
