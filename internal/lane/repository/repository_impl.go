package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() lanedomain.Repository {
	return &repo{}
}

func (r *repo) ListByVersionAndMode(ctx context.Context, db *gorm.DB, versionID snowflake.ID, mode string) ([]lanedomain.ContractLaneEligibility, error) {
	var rows []lanedomain.ContractLaneEligibility
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND UPPER(mode) = UPPER(?)", versionID, mode).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
