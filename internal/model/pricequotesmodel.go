package model

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ PriceQuotesModel = (*defaultPriceQuotesModel)(nil)

type (
	// PriceQuotesModel writes resolved quotes to the price_quotes table. The
	// table is an append-only audit trail; nothing reads it back to answer
	// price lookups.
	PriceQuotesModel interface {
		Insert(ctx context.Context, data *PriceQuote) error
	}

	defaultPriceQuotesModel struct {
		conn sqlx.SqlConn
	}

	// PriceQuote is one resolved quote row.
	PriceQuote struct {
		Kind       string    `db:"kind"`
		Source     string    `db:"source"`
		Identifier string    `db:"identifier"`
		Chain      string    `db:"chain"`
		QuotedAt   time.Time `db:"quoted_at"`
		ValueUsd   float64   `db:"value_usd"`
		ResolvedAt time.Time `db:"resolved_at"`
	}
)

// NewPriceQuotesModel returns a model for the price_quotes table.
func NewPriceQuotesModel(conn sqlx.SqlConn) PriceQuotesModel {
	return &defaultPriceQuotesModel{conn: conn}
}

func (m *defaultPriceQuotesModel) Insert(ctx context.Context, data *PriceQuote) error {
	const query = `
INSERT INTO public.price_quotes (
    kind, source, identifier, chain, quoted_at, value_usd, resolved_at, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, NOW()
);`
	_, err := m.conn.ExecCtx(ctx, query,
		data.Kind, data.Source, data.Identifier, data.Chain,
		data.QuotedAt, data.ValueUsd, data.ResolvedAt)
	return err
}
