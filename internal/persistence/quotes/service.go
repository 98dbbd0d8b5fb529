package quotespersist

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"chainprice/internal/model"
	"chainprice/pkg/price"
)

// Service records resolved quotes in Postgres. It is a write-only sink; the
// resolvers never consult it.
type Service struct {
	model model.PriceQuotesModel
}

// NewService wires a quote persistence service. Returns nil when the
// connection is missing so callers can skip the hook entirely.
func NewService(conn sqlx.SqlConn) *Service {
	if conn == nil {
		return nil
	}
	return &Service{model: model.NewPriceQuotesModel(conn)}
}

// RecordQuote implements price.Persistence.
func (s *Service) RecordQuote(ctx context.Context, quote price.Quote) error {
	if s == nil || s.model == nil {
		return nil
	}
	if strings.TrimSpace(quote.Identifier) == "" {
		return nil
	}
	return s.model.Insert(ctx, &model.PriceQuote{
		Kind:       string(quote.Kind),
		Source:     quote.Source,
		Identifier: quote.Identifier,
		Chain:      string(quote.Chain),
		QuotedAt:   quote.At,
		ValueUsd:   quote.ValueUSD,
		ResolvedAt: quote.ResolvedAt,
	})
}
