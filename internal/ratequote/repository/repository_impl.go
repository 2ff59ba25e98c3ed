package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	dbpkg "github.com/smallbiznis/freightrate/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() ratequotedomain.Repository {
	return &repo{}
}

func (r *repo) FindByRequestID(ctx context.Context, db *gorm.DB, requestID string) (*ratequotedomain.RateQuote, error) {
	var quote ratequotedomain.RateQuote
	err := db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Take(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// InsertIfAbsent inserts the header unless a quote with the same request id
// exists. It reports whether this call inserted the row. Dialects that raise
// a unique violation instead of skipping report false as well.
func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, quote *ratequotedomain.RateQuote) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoNothing: true,
		}).
		Create(quote)
	if result.Error != nil {
		if dbpkg.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindResult(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*ratequotedomain.RateQuoteResult, error) {
	var result ratequotedomain.RateQuoteResult
	err := db.WithContext(ctx).
		Where("rate_quote_id = ?", quoteID).
		Order("rank ASC").
		Order("id ASC").
		Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, resultID snowflake.ID) ([]ratequotedomain.RateQuoteChargeLine, error) {
	var lines []ratequotedomain.RateQuoteChargeLine
	err := db.WithContext(ctx).
		Where("rate_quote_result_id = ?", resultID).
		Order("sequence_no ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
