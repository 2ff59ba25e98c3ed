package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() discountdomain.Repository {
	return &repo{}
}

// FindRule returns the rule effective at the given date. A class-specific
// rule outranks a wildcard one; otherwise the newest row wins.
func (r *repo) FindRule(ctx context.Context, db *gorm.DB, versionID snowflake.ID, class int, at time.Time) (*discountdomain.LtlDiscountRule, error) {
	var rules []discountdomain.LtlDiscountRule
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND (nmfc_class = ? OR nmfc_class IS NULL)", versionID, class).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	rule, ok := temporal.Select(rules, at, discountdomain.LtlDiscountRule.Window, func(a, b discountdomain.LtlDiscountRule) bool {
		aSpecific, bSpecific := a.NmfcClass != nil, b.NmfcClass != nil
		if aSpecific != bSpecific {
			return aSpecific
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &rule, nil
}
