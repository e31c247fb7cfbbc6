package account

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("account not found")

type Service struct {
	DB *gorm.DB
}

func (s *Service) FindByOwner(ctx context.Context, owner string) (*Account, error) {
	var a Account
	err := s.DB.WithContext(ctx).Where("owner = ?", owner).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create opens an account. Profile management lives outside this service;
// this exists for seeding and tests.
func (s *Service) Create(ctx context.Context, owner string, opening decimal.Decimal) (*Account, error) {
	a := Account{Owner: owner, Balance: opening}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
