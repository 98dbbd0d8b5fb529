package onchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Minimal view-only ABIs; enough to resolve token metadata and pool pairs.
const (
	erc20ABIJSON = `[{"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}]`
	poolABIJSON  = `[{"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"token1","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`
)

// ERC20 describes a token contract.
type ERC20 struct {
	Symbol   string
	Decimals uint8
	Address  common.Address
}

// ContractCaller is the subset of an Ethereum client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader performs read-only contract calls against an Ethereum RPC endpoint.
// Construct one at process start and share it; it holds no per-request state.
type Reader struct {
	caller   ContractCaller
	closer   func()
	erc20ABI abi.ABI
	poolABI  abi.ABI
}

// NewReader dials the RPC endpoint and prepares the contract ABIs.
func NewReader(rpcURL string) (*Reader, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, errors.New("onchain: rpc url is empty")
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("onchain: connect to rpc: %w", err)
	}
	reader, err := NewReaderWithCaller(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	reader.closer = client.Close
	return reader, nil
}

// NewReaderWithCaller wraps an existing caller, typically for tests.
func NewReaderWithCaller(caller ContractCaller) (*Reader, error) {
	if caller == nil {
		return nil, errors.New("onchain: caller is nil")
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("onchain: parse erc20 abi: %w", err)
	}
	poolABI, err := abi.JSON(strings.NewReader(poolABIJSON))
	if err != nil {
		return nil, fmt.Errorf("onchain: parse pool abi: %w", err)
	}
	return &Reader{caller: caller, erc20ABI: erc20ABI, poolABI: poolABI}, nil
}

// Close releases the underlying RPC connection.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// ERC20Info resolves the symbol and decimals of a token contract.
func (r *Reader) ERC20Info(ctx context.Context, address common.Address) (*ERC20, error) {
	var symbol string
	if err := r.call(ctx, r.erc20ABI, address, "symbol", &symbol); err != nil {
		return nil, err
	}
	var decimals uint8
	if err := r.call(ctx, r.erc20ABI, address, "decimals", &decimals); err != nil {
		return nil, err
	}
	return &ERC20{Symbol: symbol, Decimals: decimals, Address: address}, nil
}

// PoolTokens resolves the token pair of a DEX pool contract.
func (r *Reader) PoolTokens(ctx context.Context, pool common.Address) (common.Address, common.Address, error) {
	var token0, token1 common.Address
	if err := r.call(ctx, r.poolABI, pool, "token0", &token0); err != nil {
		return common.Address{}, common.Address{}, err
	}
	if err := r.call(ctx, r.poolABI, pool, "token1", &token1); err != nil {
		return common.Address{}, common.Address{}, err
	}
	return token0, token1, nil
}

func (r *Reader) call(ctx context.Context, parsed abi.ABI, to common.Address, method string, out any) error {
	data, err := parsed.Pack(method)
	if err != nil {
		return fmt.Errorf("onchain: pack %s call: %w", method, err)
	}
	result, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("onchain: call %s on %s: %w", method, to.Hex(), err)
	}
	if err := parsed.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("onchain: unpack %s result: %w", method, err)
	}
	return nil
}
