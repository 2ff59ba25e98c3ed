package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type FuelSchedule struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	IndexType string       `gorm:"type:text;not null"`
	Unit      string       `gorm:"type:text;not null"`
	Notes     *string      `gorm:"type:text"`
}

func (FuelSchedule) TableName() string { return "fuel_schedules" }

// FuelScheduleRow is one fuel value in a schedule. The index band is carried
// for reference only; rows are picked by date.
type FuelScheduleRow struct {
	ID             snowflake.ID        `gorm:"primaryKey"`
	FuelScheduleID snowflake.ID        `gorm:"not null;index"`
	EffectiveStart time.Time           `gorm:"type:date;not null"`
	EffectiveEnd   *time.Time          `gorm:"type:date"`
	IndexMin       decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	IndexMax       decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	FuelValue      decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
}

func (FuelScheduleRow) TableName() string { return "fuel_schedule_rows" }

func (r FuelScheduleRow) Window() temporal.Window {
	w := temporal.Window{Start: r.EffectiveStart}
	if r.EffectiveEnd != nil {
		w.End = *r.EffectiveEnd
	}
	return w
}

// ContractFuelRule binds a contract version to a fuel schedule.
type ContractFuelRule struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	ContractVersionID snowflake.ID `gorm:"not null;index"`
	FuelScheduleID    snowflake.ID `gorm:"not null"`
	ApplyTo           string       `gorm:"type:text;not null;default:'Linehaul'"`
	CalcMethod        string       `gorm:"type:text;not null;default:'Percent'"`
	EffectiveDate     time.Time    `gorm:"type:date;not null"`
	ExpirationDate    *time.Time   `gorm:"type:date"`
}

func (ContractFuelRule) TableName() string { return "contract_fuel_rules" }

func (r ContractFuelRule) Window() temporal.Window {
	w := temporal.Window{Start: r.EffectiveDate}
	if r.ExpirationDate != nil {
		w.End = *r.ExpirationDate
	}
	return w
}

// Spec reads the schedule row's value as either a percentage or a flat amount,
// depending on the rule's method.
func (r ContractFuelRule) Spec(row FuelScheduleRow) ratingdomain.CalcSpec {
	value := decimal.NewNullDecimal(row.FuelValue)
	return ratingdomain.CalcSpec{
		Type:    r.CalcMethod,
		Flat:    value,
		Percent: value,
		ApplyTo: r.ApplyTo,
	}
}

type Repository interface {
	FindRule(ctx context.Context, db *gorm.DB, versionID snowflake.ID, at time.Time) (*ContractFuelRule, error)
	FindScheduleRow(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID, at time.Time) (*FuelScheduleRow, error)
}

type Input struct {
	VersionID snowflake.ID
	ShipDate  time.Time
	Basis     ratingdomain.Basis
}

type Service interface {
	Apply(ctx context.Context, in Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error)
}
