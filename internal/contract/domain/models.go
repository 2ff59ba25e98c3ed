package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freightrate/internal/temporal"
)

const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
)

type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Status    string       `gorm:"type:text;not null;default:'Active'" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Account) TableName() string { return "accounts" }

// Provider is the carrier side of a contract.
type Provider struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Provider) TableName() string { return "providers" }

type Contract struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	AccountID  *snowflake.ID `gorm:"index:idx_contracts_account_mode" json:"account_id,omitempty"`
	ProviderID *snowflake.ID `gorm:"index" json:"provider_id,omitempty"`
	Mode       string        `gorm:"type:text;not null;index:idx_contracts_account_mode" json:"mode"`
	Name       string        `gorm:"type:text;not null" json:"name"`
	IsActive   bool          `gorm:"not null;default:true" json:"is_active"`
	Status     string        `gorm:"type:text;not null;default:'Draft'" json:"status"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

// ContractVersion is an immutable dated snapshot of a contract's rules. Only
// Status and PublishedAt change after creation.
type ContractVersion struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractID     snowflake.ID `gorm:"not null;index" json:"contract_id"`
	VersionNo      int          `gorm:"not null" json:"version_no"`
	EffectiveStart time.Time    `gorm:"type:date;not null" json:"effective_start"`
	EffectiveEnd   *time.Time   `gorm:"type:date" json:"effective_end,omitempty"`
	Status         string       `gorm:"type:text;not null;default:'Draft'" json:"status"`
	PublishedAt    *time.Time   `json:"published_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}

func (ContractVersion) TableName() string { return "contract_versions" }

func (v ContractVersion) Window() temporal.Window {
	w := temporal.Window{Start: v.EffectiveStart}
	if v.EffectiveEnd != nil {
		w.End = *v.EffectiveEnd
	}
	return w
}

// ContractStatusHistory records every publish transition.
type ContractStatusHistory struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	ContractID        snowflake.ID `gorm:"not null;index"`
	ContractVersionID snowflake.ID `gorm:"not null;index"`
	FromStatus        string       `gorm:"type:text;not null"`
	ToStatus          string       `gorm:"type:text;not null"`
	ChangedAt         time.Time    `gorm:"not null"`
	UserID            *string      `gorm:"type:text"`
	Note              *string      `gorm:"type:text"`
}

func (ContractStatusHistory) TableName() string { return "contract_status_history" }
