package price

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction is a minimal on-chain transaction record.
type Transaction struct {
	From        common.Address
	To          common.Address
	BlockNumber uint64
	BlockTime   time.Time
	Hash        common.Hash
}

// Trade describes a completed token exchange with its resolved USD value.
type Trade struct {
	Time         time.Time
	Trader       common.Address
	BoughtToken  common.Address
	SoldToken    common.Address
	BoughtAmount float64
	SoldAmount   float64
	UsdValue     float64
}

// DecodedLog is a decoded contract event.
type DecodedLog struct {
	Name      string
	Signature string
	Params    []map[string]any
}

// LogEvent groups the decoded logs emitted by one transaction.
type LogEvent struct {
	DecodedLogs []DecodedLog
}
