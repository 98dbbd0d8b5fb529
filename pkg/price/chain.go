package price

// Blockchain identifies a supported ledger network.
type Blockchain string

// Ethereum is the only network currently supported.
const Ethereum Blockchain = "ethereum"

// Blockchains enumerates every supported network. Any per-source mapping
// keyed by Blockchain must cover this whole list; a missing entry is a
// configuration defect, not a runtime fallback.
var Blockchains = []Blockchain{Ethereum}

var nativeSymbols = map[Blockchain]string{
	Ethereum: "ETH",
}

// NativeSymbol returns the ticker of the chain's base token, e.g. "ETH".
func (b Blockchain) NativeSymbol() (string, error) {
	symbol, ok := nativeSymbols[b]
	if !ok {
		return "", &UnsupportedBlockchainError{Chain: b}
	}
	return symbol, nil
}

// Supported reports whether the chain is a declared member of Blockchains.
func (b Blockchain) Supported() bool {
	for _, chain := range Blockchains {
		if chain == b {
			return true
		}
	}
	return false
}
