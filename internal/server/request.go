package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

const shipDateLayout = "2006-01-02"

var requestValidator = newValidator()

type quoteRequest struct {
	Mode             string         `json:"mode" validate:"required,oneof=LTL FTL FCL LCL"`
	CustomerID       string         `json:"customer_id" validate:"max=64"`
	ContractID       string         `json:"contract_id" validate:"max=32"`
	Origin           addressRequest `json:"origin"`
	Destination      addressRequest `json:"destination"`
	ShipDate         string         `json:"ship_date" validate:"required,datetime=2006-01-02"`
	Lines            []lineRequest  `json:"lines" validate:"required,min=1,dive"`
	AccessorialCodes []string       `json:"accessorial_codes" validate:"omitempty,dive,max=32"`
	RequestID        string         `json:"request_id" validate:"omitempty,uuid"`
	OriginPort       string         `json:"origin_port" validate:"max=16"`
	DestinationPort  string         `json:"destination_port" validate:"max=16"`
	EquipmentType    string         `json:"equipment_type" validate:"max=32"`
	ContainerType    string         `json:"container_type" validate:"max=32"`
	ServiceLevel     string         `json:"service_level" validate:"max=32"`
	Hazmat           bool           `json:"hazmat"`
}

type addressRequest struct {
	Country         string `json:"country" validate:"required,min=2,max=3"`
	StateOrProvince string `json:"state_or_province" validate:"max=64"`
	City            string `json:"city" validate:"max=128"`
	PostalCode      string `json:"postal_code" validate:"max=16"`
}

type lineRequest struct {
	Weight       decimal.Decimal  `json:"weight"`
	Pieces       int              `json:"pieces" validate:"gt=0"`
	LengthIn     *decimal.Decimal `json:"length_in"`
	WidthIn      *decimal.Decimal `json:"width_in"`
	HeightIn     *decimal.Decimal `json:"height_in"`
	FreightClass string           `json:"freight_class" validate:"max=8"`
	Nmfc         string           `json:"nmfc" validate:"max=32"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateQuote, quoteRequest{})
	v.RegisterStructValidation(validateLine, lineRequest{})
	return v
}

func validateQuote(sl validator.StructLevel) {
	req := sl.Current().Interface().(quoteRequest)
	if req.Mode != ratingdomain.ModeLTL.String() {
		return
	}
	for i, line := range req.Lines {
		if strings.TrimSpace(line.FreightClass) == "" {
			sl.ReportError(line.FreightClass, fmt.Sprintf("lines[%d].freight_class", i), "FreightClass", "required_for_ltl", "")
		}
	}
}

func validateLine(sl validator.StructLevel) {
	line := sl.Current().Interface().(lineRequest)
	if !line.Weight.IsPositive() {
		sl.ReportError(line.Weight, "weight", "Weight", "gt", "0")
	}

	dims := []*decimal.Decimal{line.LengthIn, line.WidthIn, line.HeightIn}
	present := 0
	for _, d := range dims {
		if d != nil {
			present++
		}
	}
	switch {
	case present > 0 && present < len(dims):
		sl.ReportError(line.LengthIn, "dimensions", "Dimensions", "all_or_none", "")
	case present == len(dims):
		for _, d := range dims {
			if !d.IsPositive() {
				sl.ReportError(*d, "dimensions", "Dimensions", "gt", "0")
				return
			}
		}
	}
}

// ParseQuoteRequest decodes, validates and converts a JSON quote request.
func ParseQuoteRequest(data []byte) (ratingdomain.Request, error) {
	var req quoteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ratingdomain.Request{}, invalidRequestError()
	}
	if err := validateQuoteRequest(&req); err != nil {
		return ratingdomain.Request{}, err
	}
	return req.toDomain()
}

// validateQuoteRequest normalizes req in place and reports every rule it breaks.
func validateQuoteRequest(req *quoteRequest) error {
	req.Mode = strings.ToUpper(strings.TrimSpace(req.Mode))
	req.ShipDate = strings.TrimSpace(req.ShipDate)
	req.RequestID = strings.ToLower(strings.TrimSpace(req.RequestID))

	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}

	out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Code:    fe.Tag(),
			Message: field + " " + validationText(fe),
		})
	}
	return out
}

func validationText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_for_ltl":
		return "is required for LTL"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "uuid":
		return "must be a UUID"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "all_or_none":
		return "must provide length_in, width_in and height_in together or not at all"
	default:
		return "is invalid"
	}
}

func (r quoteRequest) toDomain() (ratingdomain.Request, error) {
	mode, ok := ratingdomain.ParseMode(r.Mode)
	if !ok {
		return ratingdomain.Request{}, ratingdomain.ErrInvalidMode
	}
	shipDate, err := time.Parse(shipDateLayout, r.ShipDate)
	if err != nil {
		return ratingdomain.Request{}, ratingdomain.ErrInvalidShipDate
	}

	lines := make([]ratingdomain.ShipmentLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, ratingdomain.ShipmentLine{
			Weight:       line.Weight,
			Pieces:       line.Pieces,
			LengthIn:     line.LengthIn,
			WidthIn:      line.WidthIn,
			HeightIn:     line.HeightIn,
			FreightClass: strings.TrimSpace(line.FreightClass),
			Nmfc:         strings.TrimSpace(line.Nmfc),
		})
	}

	return ratingdomain.Request{
		Mode:             mode,
		CustomerID:       strings.TrimSpace(r.CustomerID),
		ContractID:       strings.TrimSpace(r.ContractID),
		Origin:           r.Origin.toDomain(),
		Destination:      r.Destination.toDomain(),
		ShipDate:         shipDate,
		Lines:            lines,
		AccessorialCodes: r.AccessorialCodes,
		RequestID:        r.RequestID,
		OriginPort:       strings.TrimSpace(r.OriginPort),
		DestinationPort:  strings.TrimSpace(r.DestinationPort),
		EquipmentType:    strings.TrimSpace(r.EquipmentType),
		ContainerType:    strings.TrimSpace(r.ContainerType),
		ServiceLevel:     strings.TrimSpace(r.ServiceLevel),
		Hazmat:           r.Hazmat,
	}, nil
}

func (a addressRequest) toDomain() ratingdomain.Address {
	return ratingdomain.Address{
		Country:         strings.TrimSpace(a.Country),
		StateOrProvince: strings.TrimSpace(a.StateOrProvince),
		City:            strings.TrimSpace(a.City),
		PostalCode:      strings.TrimSpace(a.PostalCode),
	}
}
