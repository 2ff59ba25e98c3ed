package repository

import (
	"context"
	"errors"

	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() geographydomain.Repository {
	return &repo{}
}

// FindByPostalCode matches postal codes case-insensitively and prefers the
// most recently updated mapping. postalCode must already be upper-cased.
func (r *repo) FindByPostalCode(ctx context.Context, db *gorm.DB, country, postalCode string) (*geographydomain.GeoZipZone, error) {
	var row geographydomain.GeoZipZone
	err := db.WithContext(ctx).
		Where("country_code = ? AND UPPER(postal_code) = ?", country, postalCode).
		Order("updated_at DESC").
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
