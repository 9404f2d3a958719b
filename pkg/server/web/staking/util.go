package staking

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/solexplorer/staking-server/pkg/fixedpoint"
	"github.com/solexplorer/staking-server/pkg/staking"
)

const (
	successJsonKey = "success"
	errorJsonKey   = "error"
)

var (
	errTooManyRequests = errors.New("too many requests")
	errTimedOut        = errors.New("request timed out")
)

type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody() GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
	}
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}

// HandleStakingErrorInWebContext maps a staking service error to a status
// code and the error to show the caller. Failures past input validation keep
// their underlying message for diagnostics.
func HandleStakingErrorInWebContext(err error) (int, error) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case errors.Is(err, staking.ErrInvalidWallet),
		errors.Is(err, staking.ErrInvalidAmount),
		errors.Is(err, fixedpoint.ErrInvalidAmount),
		errors.Is(err, fixedpoint.ErrNegativeAmount),
		errors.Is(err, fixedpoint.ErrAmountOverflow):
		return http.StatusBadRequest, err
	case errors.Is(err, staking.ErrPoolNotFound):
		return http.StatusNotFound, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, errTimedOut
	default:
		return http.StatusInternalServerError, err
	}
}
