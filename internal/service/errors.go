package service

import (
	"errors"

	"vastustructural/internal/model"
)

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
