package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/mock_service.go -package=mock github.com/smallbiznis/freightrate/internal/contract/domain Service

type Repository interface {
	FindContractByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	FindLatestActiveContract(ctx context.Context, db *gorm.DB, accountID snowflake.ID, mode string) (*Contract, error)
	FindPublishedVersion(ctx context.Context, db *gorm.DB, contractID snowflake.ID, at time.Time) (*ContractVersion, error)
	FindVersionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ContractVersion, error)
	MarkVersionPublished(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateContractStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, at time.Time) error
	InsertStatusHistory(ctx context.Context, db *gorm.DB, entry *ContractStatusHistory) error
}

type Service interface {
	Resolve(context.Context, ResolveRequest, *ratingdomain.Sheet) (Resolution, error)
	Publish(context.Context, PublishRequest) (*ContractVersion, error)
}

type ResolveRequest struct {
	CustomerID string
	ContractID string
	Mode       ratingdomain.Mode
	ShipDate   time.Time
}

// Resolution holds whatever could be resolved. Nil fields were reported on the sheet.
type Resolution struct {
	Account  *Account
	Contract *Contract
	Version  *ContractVersion
}

type PublishRequest struct {
	VersionID string
	UserID    string
	Note      string
}

var (
	ErrInvalidVersionID = errors.New("invalid_version_id")
	ErrVersionNotFound  = errors.New("contract_version_not_found")
	ErrContractNotFound = errors.New("contract_not_found")
)
