package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contractdomain.Repository {
	return &repo{}
}

func (r *repo) FindContractByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contractdomain.Contract, error) {
	var contract contractdomain.Contract
	err := db.WithContext(ctx).Where("id = ?", id).Take(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// FindLatestActiveContract returns the most recently created active contract
// for the account and mode.
func (r *repo) FindLatestActiveContract(ctx context.Context, db *gorm.DB, accountID snowflake.ID, mode string) (*contractdomain.Contract, error) {
	var contract contractdomain.Contract
	err := db.WithContext(ctx).
		Where("account_id = ? AND mode = ? AND is_active = ?", accountID, mode, true).
		Order("id DESC").
		Take(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// FindPublishedVersion picks the published version effective at the given
// date, highest version number first.
func (r *repo) FindPublishedVersion(ctx context.Context, db *gorm.DB, contractID snowflake.ID, at time.Time) (*contractdomain.ContractVersion, error) {
	var versions []contractdomain.ContractVersion
	err := db.WithContext(ctx).
		Where("contract_id = ? AND status = ?", contractID, contractdomain.StatusPublished).
		Find(&versions).Error
	if err != nil {
		return nil, err
	}

	version, ok := temporal.Select(versions, at, contractdomain.ContractVersion.Window, func(a, b contractdomain.ContractVersion) bool {
		if a.VersionNo != b.VersionNo {
			return a.VersionNo > b.VersionNo
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &version, nil
}

func (r *repo) FindVersionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contractdomain.ContractVersion, error) {
	var version contractdomain.ContractVersion
	err := db.WithContext(ctx).Where("id = ?", id).Take(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

func (r *repo) MarkVersionPublished(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contract_versions
		 SET status = ?, published_at = ?
		 WHERE id = ?`,
		contractdomain.StatusPublished,
		at,
		id,
	).Error
}

func (r *repo) UpdateContractStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contracts SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		at,
		id,
	).Error
}

func (r *repo) InsertStatusHistory(ctx context.Context, db *gorm.DB, entry *contractdomain.ContractStatusHistory) error {
	return db.WithContext(ctx).Create(entry).Error
}
