package memstore

import (
	"context"
	"fmt"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type userRepository struct {
	db *db
}

var _ repository.UserRepository = (*userRepository)(nil)

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	now := r.db.now()
	user.CreatedAt, user.UpdatedAt = now, now
	row := *user
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		return insertUnique(txn, tableUsers, &row, row.ID, map[string]string{"email": row.Email})
	})
}

func (r *userRepository) first(ctx context.Context, index, value string) (*model.User, error) {
	var user *model.User
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableUsers, index, value)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("user %s: %w", value, model.ErrNotFound)
		}
		u := *obj.(*model.User)
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, indexID, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email", email)
}
