package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/gorm"
)

// GeoZipZone maps a postal code to the zone and region ids rate tables key on.
type GeoZipZone struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	CountryCode string       `gorm:"type:text;not null;index:idx_geo_zip_zones_postal"`
	PostalCode  string       `gorm:"type:text;not null;index:idx_geo_zip_zones_postal"`
	ZoneID      *int64
	RegionID    *int64
	UpdatedAt   time.Time `gorm:"not null"`
}

func (GeoZipZone) TableName() string { return "geo_zip_zones" }

// Location is a resolved address. Nil ids were not resolvable.
type Location struct {
	ZoneID   *int64 `json:"zone_id,omitempty"`
	RegionID *int64 `json:"region_id,omitempty"`
}

type Pair struct {
	Origin      Location
	Destination Location
}

type Repository interface {
	FindByPostalCode(ctx context.Context, db *gorm.DB, country, postalCode string) (*GeoZipZone, error)
}

type Service interface {
	Resolve(context.Context, ratingdomain.Address) (Location, error)
	ResolvePair(ctx context.Context, origin, destination ratingdomain.Address, sheet *ratingdomain.Sheet) (Pair, error)
}
