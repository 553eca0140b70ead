package assegai

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
)

// chainQuery is the read-only RPC envelope the proxy accepts.
type chainQuery struct {
	Chain  string `json:"chain"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// WalletAddress returns the agent's wallet address on the given chain. Chains
// are identified by CAIP-2 ids such as "eip155:1".
func (c *Client) WalletAddress(ctx context.Context, chain string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := c.transport.Get(ctx, "/agent/wallet-address/"+chain, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// QueryChain performs a read-only RPC call through the proxy and returns the
// raw JSON result. A nil params slice is sent as an empty array, matching
// what RPC nodes expect for parameterless methods.
func (c *Client) QueryChain(ctx context.Context, chain, method string, params []any) (any, error) {
	if params == nil {
		params = []any{}
	}
	var out struct {
		Result any `json:"result"`
	}
	err := c.transport.Post(ctx, "/agent/query-chain", chainQuery{
		Chain:  chain,
		Method: method,
		Params: params,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Balance returns the wei balance of addr.
func (c *Client) Balance(ctx context.Context, chain, addr string) (*big.Int, error) {
	result, err := c.queryString(ctx, chain, "eth_getBalance", []any{addr, "latest"})
	if err != nil {
		return nil, err
	}
	value, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeRPCError, err, "decode eth_getBalance result")
	}
	return value, nil
}

// Nonce returns the confirmed transaction count of addr.
func (c *Client) Nonce(ctx context.Context, chain, addr string) (uint64, error) {
	result, err := c.queryString(ctx, chain, "eth_getTransactionCount", []any{addr, "latest"})
	if err != nil {
		return 0, err
	}
	nonce, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.CodeRPCError, err, "decode eth_getTransactionCount result")
	}
	return nonce, nil
}

// GasPrice returns the node's current gas price suggestion in wei.
func (c *Client) GasPrice(ctx context.Context, chain string) (*big.Int, error) {
	result, err := c.queryString(ctx, chain, "eth_gasPrice", nil)
	if err != nil {
		return nil, err
	}
	price, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeRPCError, err, "decode eth_gasPrice result")
	}
	return price, nil
}

// BlockNumber returns the latest block height.
func (c *Client) BlockNumber(ctx context.Context, chain string) (uint64, error) {
	result, err := c.queryString(ctx, chain, "eth_blockNumber", nil)
	if err != nil {
		return 0, err
	}
	height, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.CodeRPCError, err, "decode eth_blockNumber result")
	}
	return height, nil
}

// ContractCode returns the hex-encoded bytecode deployed at addr.
func (c *Client) ContractCode(ctx context.Context, chain, addr string) (string, error) {
	return c.queryString(ctx, chain, "eth_getCode", []any{addr, "latest"})
}

// IsContract reports whether addr holds deployed code. Nodes answer "0x" or
// "0x0" for plain accounts depending on the implementation.
func (c *Client) IsContract(ctx context.Context, chain, addr string) (bool, error) {
	code, err := c.ContractCode(ctx, chain, addr)
	if err != nil {
		return false, err
	}
	return code != "0x" && code != "0x0", nil
}

func (c *Client) queryString(ctx context.Context, chain, method string, params []any) (string, error) {
	result, err := c.QueryChain(ctx, chain, method, params)
	if err != nil {
		return "", err
	}
	value, ok := result.(string)
	if !ok {
		return "", xerrors.New(xerrors.CodeRPCError, fmt.Sprintf("%s returned a non-string result", method))
	}
	return value, nil
}
