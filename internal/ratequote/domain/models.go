package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RateQuote is the committed quote header. RequestID is the idempotency key.
type RateQuote struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	RequestID    string        `gorm:"type:varchar(36);not null;uniqueIndex" json:"request_id"`
	AccountID    *snowflake.ID `json:"account_id,omitempty"`
	Mode         string        `gorm:"type:varchar(8);not null" json:"mode"`
	CurrencyCode string        `gorm:"type:varchar(3);not null" json:"currency_code"`
	RateDate     time.Time     `gorm:"type:date;not null" json:"rate_date"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
}

func (RateQuote) TableName() string { return "rate_quotes" }

type RateQuoteResult struct {
	ID                snowflake.ID                `gorm:"primaryKey"`
	RateQuoteID       snowflake.ID                `gorm:"not null;index"`
	ProviderID        *snowflake.ID
	ContractID        snowflake.ID                `gorm:"not null"`
	ContractVersionID snowflake.ID                `gorm:"not null"`
	Rank              int                         `gorm:"not null"`
	TotalAmount       decimal.Decimal             `gorm:"type:decimal(18,6);not null"`
	TransitDays       *int
	Warnings          datatypes.JSONSlice[string] `gorm:"type:json"`
	CreatedAt         time.Time                   `gorm:"not null"`
}

func (RateQuoteResult) TableName() string { return "rate_quote_results" }

type RateQuoteChargeLine struct {
	ID                  snowflake.ID        `gorm:"primaryKey"`
	RateQuoteResultID   snowflake.ID        `gorm:"not null;index"`
	SequenceNo          int                 `gorm:"not null"`
	CanonicalChargeType string              `gorm:"type:text;not null"`
	AccessorialCode     *string             `gorm:"type:text"`
	EdiStandard         *string             `gorm:"type:text"`
	EdiChargeCode       *string             `gorm:"type:text"`
	Description         string              `gorm:"type:text"`
	Quantity            decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	Rate                decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	Amount              decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	ApplyTo             *string             `gorm:"type:text"`
	DetailJSON          datatypes.JSON      `gorm:"column:detail_json;type:json"`
}

func (RateQuoteChargeLine) TableName() string { return "rate_quote_charge_lines" }

// Code is the charge code shown to callers: the accessorial code when there
// is one, otherwise the canonical type.
func (l RateQuoteChargeLine) Code() string {
	if l.AccessorialCode != nil && *l.AccessorialCode != "" {
		return *l.AccessorialCode
	}
	return l.CanonicalChargeType
}

// EdiChargeCode maps a canonical charge type to a code of an EDI standard.
// DefaultAccessorialCode narrows an ACCESSORIAL mapping to one accessorial.
type EdiChargeCode struct {
	ID                     snowflake.ID `gorm:"primaryKey"`
	Standard               string       `gorm:"type:text;not null;index"`
	Code                   string       `gorm:"type:text;not null"`
	Description            *string      `gorm:"type:text"`
	CanonicalChargeType    string       `gorm:"type:text;not null"`
	DefaultAccessorialCode *string      `gorm:"type:text"`
}

func (EdiChargeCode) TableName() string { return "edi_charge_codes" }

const CanonicalAccessorial = "ACCESSORIAL"

type CommitResponse struct {
	RateQuoteID       snowflake.ID          `json:"rate_quote_id,string"`
	RateQuoteResultID snowflake.ID          `json:"rate_quote_result_id,string"`
	RequestID         string                `json:"request_id"`
	Mode              string                `json:"mode"`
	CurrencyCode      string                `json:"currency_code"`
	RateDate          time.Time             `json:"rate_date"`
	Quote             ratingdomain.Response `json:"quote"`

	Replayed bool `json:"-"`
}

//go:generate mockgen -destination=mock/mock_service.go -package=mock github.com/smallbiznis/freightrate/internal/ratequote/domain Service

type Repository interface {
	FindByRequestID(ctx context.Context, db *gorm.DB, requestID string) (*RateQuote, error)
	InsertIfAbsent(ctx context.Context, db *gorm.DB, quote *RateQuote) (bool, error)
	FindResult(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*RateQuoteResult, error)
	ListLines(ctx context.Context, db *gorm.DB, resultID snowflake.ID) ([]RateQuoteChargeLine, error)
}

type Service interface {
	Commit(ctx context.Context, req ratingdomain.Request) (CommitResponse, error)
	Get(ctx context.Context, requestID string) (CommitResponse, error)
}

var (
	ErrInvalidRequestID    = errors.New("invalid_request_id")
	ErrQuoteNotFound       = errors.New("rate_quote_not_found")
	ErrContractNotResolved = errors.New("contract_not_resolved")
	ErrInconsistentState   = errors.New("inconsistent_state")
)
