package onchain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers contract calls from a table keyed by method selector.
type fakeCaller struct {
	responses map[string][]byte
	err       error
	calls     []ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[string(call.Data[:4])], nil
}

func packOutput(t *testing.T, abiJSON, method string, values ...any) (selector string, data []byte) {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	packed, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return string(parsed.Methods[method].ID), packed
}

func TestERC20Info(t *testing.T) {
	caller := &fakeCaller{responses: map[string][]byte{}}
	symbolSel, symbolOut := packOutput(t, erc20ABIJSON, "symbol", "WETH")
	decimalsSel, decimalsOut := packOutput(t, erc20ABIJSON, "decimals", uint8(18))
	caller.responses[symbolSel] = symbolOut
	caller.responses[decimalsSel] = decimalsOut

	reader, err := NewReaderWithCaller(caller)
	require.NoError(t, err)

	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	info, err := reader.ERC20Info(context.Background(), weth)
	require.NoError(t, err)
	require.Equal(t, "WETH", info.Symbol)
	require.Equal(t, uint8(18), info.Decimals)
	require.Equal(t, weth, info.Address)

	require.Len(t, caller.calls, 2)
	require.Equal(t, weth, *caller.calls[0].To)
}

func TestPoolTokens(t *testing.T) {
	token0 := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	token1 := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	caller := &fakeCaller{responses: map[string][]byte{}}
	sel0, out0 := packOutput(t, poolABIJSON, "token0", token0)
	sel1, out1 := packOutput(t, poolABIJSON, "token1", token1)
	caller.responses[sel0] = out0
	caller.responses[sel1] = out1

	reader, err := NewReaderWithCaller(caller)
	require.NoError(t, err)

	got0, got1, err := reader.PoolTokens(context.Background(), common.HexToAddress("0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11"))
	require.NoError(t, err)
	require.Equal(t, token0, got0)
	require.Equal(t, token1, got1)
}

func TestReaderCallFailure(t *testing.T) {
	caller := &fakeCaller{err: errors.New("execution reverted")}
	reader, err := NewReaderWithCaller(caller)
	require.NoError(t, err)

	_, err = reader.ERC20Info(context.Background(), common.Address{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "execution reverted")
}

func TestNewReaderValidation(t *testing.T) {
	_, err := NewReader("")
	require.Error(t, err)

	_, err = NewReaderWithCaller(nil)
	require.Error(t, err)
}
