package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// QuoteRecord captures a resolved price quote for audit and analysis.
type QuoteRecord struct {
	Timestamp  time.Time      `json:"timestamp" msgpack:"timestamp"`
	Kind       string         `json:"kind" msgpack:"kind"`
	Source     string         `json:"source" msgpack:"source"`
	Identifier string         `json:"identifier" msgpack:"identifier"`
	Chain      string         `json:"chain,omitempty" msgpack:"chain,omitempty"`
	At         time.Time      `json:"at" msgpack:"at"`
	ValueUSD   float64        `json:"value_usd" msgpack:"value_usd"`
	Extra      map[string]any `json:"extra,omitempty" msgpack:"extra,omitempty"`
}

// Encoding selects the on-disk record format.
type Encoding string

const (
	// EncodingJSON writes indented JSON, one file per quote.
	EncodingJSON Encoding = "json"
	// EncodingMsgpack writes compact msgpack for high-volume streams.
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding maps a config string onto an Encoding, defaulting to JSON.
func ParseEncoding(s string) Encoding {
	if Encoding(s) == EncodingMsgpack {
		return EncodingMsgpack
	}
	return EncodingJSON
}

// Writer persists quote records to a directory, one file per quote.
type Writer struct {
	dir   string
	enc   Encoding
	seq   int
	nowFn func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithEncoding selects the record format.
func WithEncoding(enc Encoding) Option {
	return func(w *Writer) {
		if enc == EncodingJSON || enc == EncodingMsgpack {
			w.enc = enc
		}
	}
}

// NewWriter constructs a journal writer.
func NewWriter(dir string, opts ...Option) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	writer := &Writer{dir: dir, enc: EncodingJSON, nowFn: time.Now}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteQuote writes one quote record to a timestamped file and returns its
// path.
func (w *Writer) WriteQuote(rec *QuoteRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++

	var data []byte
	var ext string
	var err error
	switch w.enc {
	case EncodingMsgpack:
		ext = "msgpack"
		data, err = msgpack.Marshal(rec)
	default:
		ext = "json"
		data, err = json.MarshalIndent(rec, "", "  ")
	}
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("quote_%s_%05d.%s", rec.Timestamp.UTC().Format("20060102_150405"), w.seq, ext)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadQuote loads a record previously written by WriteQuote, detecting the
// encoding from the file extension.
func ReadQuote(path string) (*QuoteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec QuoteRecord
	if filepath.Ext(path) == ".msgpack" {
		err = msgpack.Unmarshal(data, &rec)
	} else {
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
