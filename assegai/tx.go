package assegai

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	xerrors "github.com/AssegaiLabs/assegailabs-sdk/errors"
)

// defaultGasLimit covers a plain value transfer.
const defaultGasLimit = "21000"

// TransactionRequest describes a transaction for the proxy to sign and
// submit with the agent's wallet. Value is a decimal wei string; Data and
// GasLimit may be left empty to get the plain-transfer defaults.
type TransactionRequest struct {
	Chain    string `json:"chain"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	GasLimit string `json:"gasLimit"`
}

// TransactionResult reports the proxy's decision on a submitted transaction.
type TransactionResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash"`
}

// RequestTransaction submits req for signing. The proxy holds the
// transaction until its spending policy or a human operator approves it,
// which can take minutes; pick a generous WithTimeout when submitting.
// Malformed requests fail locally with a VALIDATION_ERROR before anything is
// sent.
func (c *Client) RequestTransaction(ctx context.Context, req TransactionRequest) (*TransactionResult, error) {
	if req.Chain == "" {
		return nil, xerrors.New(xerrors.CodeValidationError, "chain is required")
	}
	if !strings.HasPrefix(req.To, "0x") || !common.IsHexAddress(req.To) {
		return nil, xerrors.New(xerrors.CodeValidationError, "to must be a 0x-prefixed 20-byte hex address")
	}
	if req.Value == "" {
		return nil, xerrors.New(xerrors.CodeValidationError, "value is required")
	}
	if req.Data == "" {
		req.Data = "0x"
	}
	if req.GasLimit == "" {
		req.GasLimit = defaultGasLimit
	}

	var out TransactionResult
	if err := c.transport.Post(ctx, "/agent/request-transaction", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
