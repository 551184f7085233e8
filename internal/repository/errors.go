package repository

import (
	"errors"
	"fmt"

	"vastustructural/internal/model"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the domain taxonomy.
func translate(err error, entity, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %s: %w", entity, key, model.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %s: %w", entity, key, model.ErrConflict)
	}
	return err
}
