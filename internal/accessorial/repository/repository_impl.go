package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() accessorialdomain.Repository {
	return &repo{}
}

func (r *repo) ListByCodes(ctx context.Context, db *gorm.DB, codes []string) ([]accessorialdomain.Accessorial, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var items []accessorialdomain.Accessorial
	err := db.WithContext(ctx).
		Where("UPPER(code) IN ?", codes).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindCharge returns the newest charge effective at the given date.
func (r *repo) FindCharge(ctx context.Context, db *gorm.DB, versionID, accessorialID snowflake.ID, at time.Time) (*accessorialdomain.ContractAccessorialCharge, error) {
	var rows []accessorialdomain.ContractAccessorialCharge
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND accessorial_id = ?", versionID, accessorialID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	charge, ok := temporal.Select(rows, at, accessorialdomain.ContractAccessorialCharge.Window, func(a, b accessorialdomain.ContractAccessorialCharge) bool {
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &charge, nil
}
