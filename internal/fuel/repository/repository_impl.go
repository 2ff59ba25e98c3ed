package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() fueldomain.Repository {
	return &repo{}
}

func (r *repo) FindRule(ctx context.Context, db *gorm.DB, versionID snowflake.ID, at time.Time) (*fueldomain.ContractFuelRule, error) {
	var rows []fueldomain.ContractFuelRule
	if err := db.WithContext(ctx).
		Where("contract_version_id = ?", versionID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	rule, ok := temporal.Select(rows, at, fueldomain.ContractFuelRule.Window, newerRule)
	if !ok {
		return nil, nil
	}
	return &rule, nil
}

func (r *repo) FindScheduleRow(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID, at time.Time) (*fueldomain.FuelScheduleRow, error) {
	var rows []fueldomain.FuelScheduleRow
	if err := db.WithContext(ctx).
		Where("fuel_schedule_id = ?", scheduleID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	row, ok := temporal.Select(rows, at, fueldomain.FuelScheduleRow.Window, func(a, b fueldomain.FuelScheduleRow) bool {
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func newerRule(a, b fueldomain.ContractFuelRule) bool {
	return a.ID > b.ID
}
