package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/gorm"
)

// ContractLaneEligibility permits a lane for a contract version. Every nil
// column is a wildcard.
type ContractLaneEligibility struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	ContractVersionID snowflake.ID `gorm:"not null;index:idx_lane_eligibility_version_mode"`
	Mode              string       `gorm:"type:text;not null;index:idx_lane_eligibility_version_mode"`
	OriginZoneID      *int64
	DestZoneID        *int64
	OriginRegionID    *int64
	DestRegionID      *int64
	OriginPort        *string `gorm:"type:text"`
	DestPort          *string `gorm:"type:text"`
	EquipmentType     *string `gorm:"type:text"`
	ContainerType     *string `gorm:"type:text"`
}

func (ContractLaneEligibility) TableName() string { return "contract_lane_eligibility" }

// Query is the resolved lane to check. Nil or empty values are unresolved and
// do not constrain the match.
type Query struct {
	VersionID      snowflake.ID
	Mode           ratingdomain.Mode
	OriginZoneID   *int64
	DestZoneID     *int64
	OriginRegionID *int64
	DestRegionID   *int64
	OriginPort     string
	DestPort       string
	EquipmentType  string
	ContainerType  string
}

func (r ContractLaneEligibility) Matches(q Query) bool {
	return strings.EqualFold(r.Mode, q.Mode.String()) &&
		matchID(r.OriginZoneID, q.OriginZoneID) &&
		matchID(r.DestZoneID, q.DestZoneID) &&
		matchID(r.OriginRegionID, q.OriginRegionID) &&
		matchID(r.DestRegionID, q.DestRegionID) &&
		matchCode(r.OriginPort, q.OriginPort) &&
		matchCode(r.DestPort, q.DestPort) &&
		matchCode(r.EquipmentType, q.EquipmentType) &&
		matchCode(r.ContainerType, q.ContainerType)
}

func matchID(rule, value *int64) bool {
	if rule == nil || value == nil {
		return true
	}
	return *rule == *value
}

func matchCode(rule *string, value string) bool {
	if rule == nil || strings.TrimSpace(*rule) == "" {
		return true
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(*rule), value)
}

type Repository interface {
	ListByVersionAndMode(ctx context.Context, db *gorm.DB, versionID snowflake.ID, mode string) ([]ContractLaneEligibility, error)
}

type Service interface {
	Check(context.Context, Query) (bool, error)
}
