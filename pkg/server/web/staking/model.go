package staking

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/solexplorer/staking-server/pkg/fixedpoint"
)

const maxRequestBodySize = 4096

type walletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type amountRequest struct {
	WalletAddress string      `json:"walletAddress"`
	Amount        json.Number `json:"amount"`
}

// parsedAmountRequest is an amountRequest with its amount parsed. The amount
// is only checked for being a number here, range checks are the service's.
type parsedAmountRequest struct {
	WalletAddress string
	Amount        decimal.Decimal
}

func newWalletRequestFromHttpContext(r *http.Request) (*walletRequest, error) {
	var req walletRequest
	if err := decodeJsonBody(r, &req); err != nil {
		return nil, err
	}

	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if len(req.WalletAddress) == 0 {
		return nil, errors.New("walletAddress is required")
	}
	return &req, nil
}

func newAmountRequestFromHttpContext(r *http.Request) (*parsedAmountRequest, error) {
	var req amountRequest
	if err := decodeJsonBody(r, &req); err != nil {
		return nil, err
	}

	walletAddress := strings.TrimSpace(req.WalletAddress)
	if len(walletAddress) == 0 {
		return nil, errors.New("walletAddress is required")
	}
	if len(req.Amount) == 0 {
		return nil, errors.New("amount is required")
	}

	amount, err := fixedpoint.Parse(req.Amount.String())
	if err != nil {
		return nil, err
	}

	return &parsedAmountRequest{
		WalletAddress: walletAddress,
		Amount:        amount,
	}, nil
}

func decodeJsonBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body missing")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.New("request body missing")
		}
		return errors.Wrap(err, "invalid json body")
	}
	return nil
}
