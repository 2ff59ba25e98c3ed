// Package quotedoc renders committed rate quotes as PDF documents.
package quotedoc

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("quotedoc",
	fx.Provide(New),
)

type Renderer interface {
	Render(ctx context.Context, quote ratequotedomain.CommitResponse) ([]byte, error)
}

type pdfRenderer struct{}

func New() Renderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) Render(ctx context.Context, quote ratequotedomain.CommitResponse) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Rate Quote", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(7).Add(
			text.New("Quote: "+quote.Quote.QuoteID, props.Text{Top: 0, Size: 9}),
			text.New("Request: "+quote.RequestID, props.Text{Top: 5, Size: 9}),
			text.New("Reference: "+quote.RateQuoteID.String(), props.Text{Top: 10, Size: 9}),
		),
		col.New(5).Add(
			text.New("Mode: "+quote.Mode, props.Text{Top: 0, Size: 9, Align: align.Right}),
			text.New("Rate date: "+rateDate(quote), props.Text{Top: 5, Size: 9, Align: align.Right}),
			text.New("Currency: "+quote.CurrencyCode, props.Text{Top: 10, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(2, "Code", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(7, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, charge := range quote.Quote.Charges {
		m.AddRow(8,
			text.NewCol(2, charge.Code, props.Text{Size: 9}),
			text.NewCol(7, charge.Description, props.Text{Size: 9}),
			text.NewCol(3, money(charge.Amount, quote.CurrencyCode), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}),
		text.NewCol(3, money(quote.Quote.Total, quote.CurrencyCode), props.Text{Style: fontstyle.Bold, Size: 10, Top: 3, Align: align.Right}),
	)

	if len(quote.Quote.Warnings) > 0 {
		m.AddRow(10,
			text.NewCol(12, "Warnings", props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		)
		for _, warning := range quote.Quote.Warnings {
			m.AddRow(6, text.NewCol(12, "- "+warning, props.Text{Size: 8}))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render quote %s: %w", quote.RequestID, err)
	}
	return doc.GetBytes(), nil
}

func rateDate(quote ratequotedomain.CommitResponse) string {
	if quote.RateDate.IsZero() {
		return "-"
	}
	return quote.RateDate.Format("2006-01-02")
}

func money(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}
