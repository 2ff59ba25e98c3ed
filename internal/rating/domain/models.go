// Package domain contains the request, response and accumulator types shared by
// every rating step.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Mode is the shipment mode a contract and a quote are priced under.
type Mode string

const (
	ModeLTL Mode = "LTL"
	ModeFTL Mode = "FTL"
	ModeFCL Mode = "FCL"
	ModeLCL Mode = "LCL"
)

// ParseMode normalizes a mode string. The boolean is false for unknown modes.
func ParseMode(raw string) (Mode, bool) {
	switch mode := Mode(strings.ToUpper(strings.TrimSpace(raw))); mode {
	case ModeLTL, ModeFTL, ModeFCL, ModeLCL:
		return mode, true
	default:
		return "", false
	}
}

func (m Mode) String() string { return string(m) }

type Address struct {
	Country         string `json:"country"`
	StateOrProvince string `json:"state_or_province,omitempty"`
	City            string `json:"city,omitempty"`
	PostalCode      string `json:"postal_code"`
}

// ShipmentLine is one handling unit group. Weight is the total for the line in lb.
type ShipmentLine struct {
	Weight       decimal.Decimal  `json:"weight"`
	Pieces       int              `json:"pieces"`
	LengthIn     *decimal.Decimal `json:"length_in,omitempty"`
	WidthIn      *decimal.Decimal `json:"width_in,omitempty"`
	HeightIn     *decimal.Decimal `json:"height_in,omitempty"`
	FreightClass string           `json:"freight_class,omitempty"`
	Nmfc         string           `json:"nmfc,omitempty"`
}

// HasDimensions reports whether all three dimensions are present.
func (l ShipmentLine) HasDimensions() bool {
	return l.LengthIn != nil && l.WidthIn != nil && l.HeightIn != nil
}

// Request is a validated quote request.
type Request struct {
	Mode             Mode
	CustomerID       string
	ContractID       string
	Origin           Address
	Destination      Address
	ShipDate         time.Time
	Lines            []ShipmentLine
	AccessorialCodes []string
	RequestID        string
	OriginPort       string
	DestinationPort  string
	EquipmentType    string
	ContainerType    string
	ServiceLevel     string
	Hazmat           bool
}

// TotalWeight sums line weights in lb.
func (r Request) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.Weight)
	}
	return total
}

// ChargeKind classifies a charge line for persistence and reporting.
type ChargeKind string

const (
	ChargeKindLinehaul    ChargeKind = "linehaul"
	ChargeKindDiscount    ChargeKind = "discount"
	ChargeKindMinimum     ChargeKind = "minimum"
	ChargeKindAccessorial ChargeKind = "accessorial"
	ChargeKindFuel        ChargeKind = "fuel"
)

const (
	CodeLinehaul = "LINEHAUL"
	CodeDiscount = "DISCOUNT"
	CodeMinimum  = "MINIMUM"
	CodeFuel     = "FUEL"
)

type ChargeLine struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`

	Kind    ChargeKind     `json:"-"`
	ApplyTo ApplyTo        `json:"-"`
	Detail  map[string]any `json:"-"`
}

type Response struct {
	QuoteID  string          `json:"quote_id"`
	Total    decimal.Decimal `json:"total"`
	Charges  []ChargeLine    `json:"charges"`
	Warnings []string        `json:"warnings"`
}

// Computation is a quote together with the references it was priced against.
type Computation struct {
	Response Response
	Mode     Mode
	ShipDate time.Time

	AccountID         *snowflake.ID
	ProviderID        *snowflake.ID
	ContractID        *snowflake.ID
	ContractVersionID *snowflake.ID
}

// Resolved reports whether a published contract version was found.
func (c Computation) Resolved() bool {
	return c.ContractID != nil && c.ContractVersionID != nil
}
