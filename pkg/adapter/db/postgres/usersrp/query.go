// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/clean-lending/pkg/adapter/db/postgres"
	"github.com/momeni/clean-lending/pkg/core/cerr"
	"github.com/momeni/clean-lending/pkg/core/model"
	"gorm.io/gorm"
)

type gUser struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid"`
	Username string
	IsStaff  bool
}

func (gu *gUser) TableName() string {
	return "users"
}

func (gu *gUser) Model() *model.User {
	return &model.User{
		ID:       gu.ID,
		Username: gu.Username,
		IsStaff:  gu.IsStaff,
	}
}

func take(gdb *gorm.DB, what string) (*model.User, error) {
	var gu gUser
	err := gdb.Take(&gu).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, cerr.NotFound(fmt.Errorf(
			"user %s: %w", what, cerr.ErrNotFound,
		))
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gu.Model(), nil
}

func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.User, error) {
	return take(q.GORM(ctx).Where("id = ?", id), id.String())
}

func GetByUsername[Q postgres.Queryer](
	ctx context.Context, q Q, username string,
) (*model.User, error) {
	return take(
		q.GORM(ctx).Where("username = ?", username),
		fmt.Sprintf("%q", username),
	)
}

func List[Q postgres.Queryer](ctx context.Context, q Q) ([]model.User, error) {
	var gus []gUser
	if err := q.GORM(ctx).Order("username").Find(&gus).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	uu := make([]model.User, len(gus))
	for i := range gus {
		uu[i] = *gus[i].Model()
	}
	return uu, nil
}

func Create(
	ctx context.Context, tx *postgres.Tx, u *model.User,
) (*model.User, error) {
	gu := &gUser{
		ID:       uuid.New(),
		Username: u.Username,
		IsStaff:  u.IsStaff,
	}
	if err := tx.GORM(ctx).Create(gu).Error; err != nil {
		return nil, fmt.Errorf("insert: %w", postgres.Translate(ctx, err))
	}
	return gu.Model(), nil
}

func Delete(ctx context.Context, tx *postgres.Tx, id uuid.UUID) error {
	res := tx.GORM(ctx).Where("id = ?", id).Delete(&gUser{})
	if err := res.Error; err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return postgres.Conceal(
				ctx, err, cerr.Conflict(cerr.ErrUserReferenced),
			)
		}
		return fmt.Errorf("delete: %w", err)
	}
	if res.RowsAffected == 0 {
		return postgres.NotFound("user", id)
	}
	return nil
}

func IsReferenced(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (bool, error) {
	var ok bool
	err := tx.GORM(ctx).Raw(
		"SELECT EXISTS (SELECT 1 FROM loans WHERE user_id = ?)", id,
	).Scan(&ok).Error
	if err != nil {
		return false, fmt.Errorf("query: %w", err)
	}
	return ok, nil
}
