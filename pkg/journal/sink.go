package journal

import (
	"context"

	"chainprice/pkg/price"
)

// Sink adapts a Writer to the facade's persistence hook.
type Sink struct {
	writer *Writer
}

// NewSink wraps a journal writer as a price.Persistence sink.
func NewSink(writer *Writer) *Sink {
	return &Sink{writer: writer}
}

// RecordQuote implements price.Persistence.
func (s *Sink) RecordQuote(_ context.Context, quote price.Quote) error {
	if s == nil || s.writer == nil {
		return nil
	}
	_, err := s.writer.WriteQuote(&QuoteRecord{
		Timestamp:  quote.ResolvedAt,
		Kind:       string(quote.Kind),
		Source:     quote.Source,
		Identifier: quote.Identifier,
		Chain:      string(quote.Chain),
		At:         quote.At,
		ValueUSD:   quote.ValueUSD,
	})
	return err
}
