package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const standardX12 = "X12"

type accessorialEntry struct {
	code        string
	description string
	modes       []string
}

type ediEntry struct {
	code        string
	description string
	canonical   string
	accessorial string
}

var accessorialCatalog = []accessorialEntry{
	{code: "LIFTGATE", description: "Liftgate service", modes: []string{"LTL", "FTL"}},
	{code: "RESIDENTIAL", description: "Residential delivery", modes: []string{"LTL", "FTL"}},
	{code: "INSIDE", description: "Inside delivery", modes: []string{"LTL"}},
	{code: "APPT", description: "Delivery appointment"},
	{code: "HAZMAT", description: "Hazardous materials"},
	{code: "DETENTION", description: "Driver detention", modes: []string{"FTL"}},
	{code: "CHASSIS", description: "Chassis usage", modes: []string{"FCL"}},
}

var x12ChargeCodes = []ediEntry{
	{code: "400", description: "Freight charge", canonical: "LINEHAUL"},
	{code: "DSC", description: "Discount", canonical: "DISCOUNT"},
	{code: "MIN", description: "Minimum charge", canonical: "MINIMUM"},
	{code: "FUE", description: "Fuel surcharge", canonical: "FUEL"},
	{code: "ACC", description: "Accessorial", canonical: ratequotedomain.CanonicalAccessorial},
	{code: "LFT", description: "Liftgate", canonical: ratequotedomain.CanonicalAccessorial, accessorial: "LIFTGATE"},
	{code: "RES", description: "Residential delivery", canonical: ratequotedomain.CanonicalAccessorial, accessorial: "RESIDENTIAL"},
	{code: "IDL", description: "Inside delivery", canonical: ratequotedomain.CanonicalAccessorial, accessorial: "INSIDE"},
	{code: "HAZ", description: "Hazardous materials", canonical: ratequotedomain.CanonicalAccessorial, accessorial: "HAZMAT"},
}

// EnsureReferenceData seeds the accessorial catalog and the X12 charge codes.
// Existing rows are left untouched, so it is safe to run on every deploy.
func EnsureReferenceData(ctx context.Context, db *gorm.DB, node *snowflake.Node) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}

	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range accessorialCatalog {
			ok, err := ensureAccessorialTx(ctx, tx, node, entry)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		for _, entry := range x12ChargeCodes {
			ok, err := ensureChargeCodeTx(ctx, tx, node, entry)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func ensureAccessorialTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, entry accessorialEntry) (bool, error) {
	var existing accessorialdomain.Accessorial
	err := tx.WithContext(ctx).Where("code = ?", entry.code).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	row := accessorialdomain.Accessorial{
		ID:                node.Generate(),
		Code:              entry.code,
		Description:       entry.description,
		ModeApplicability: datatypes.JSONSlice[string](entry.modes),
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func ensureChargeCodeTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, entry ediEntry) (bool, error) {
	var existing ratequotedomain.EdiChargeCode
	err := tx.WithContext(ctx).
		Where("standard = ? AND code = ?", standardX12, entry.code).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	description := entry.description
	row := ratequotedomain.EdiChargeCode{
		ID:                  node.Generate(),
		Standard:            standardX12,
		Code:                entry.code,
		Description:         &description,
		CanonicalChargeType: entry.canonical,
	}
	if entry.accessorial != "" {
		code := entry.accessorial
		row.DefaultAccessorialCode = &code
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return false, err
	}
	return true, nil
}
