package staking

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/solexplorer/staking-server/pkg/metrics"
	"github.com/solexplorer/staking-server/pkg/netutil"
	"github.com/solexplorer/staking-server/pkg/rate"
	"github.com/solexplorer/staking-server/pkg/staking"
)

const (
	apiPathPrefix         = "/api/staking"
	stakePath             = apiPathPrefix + "/stake"
	unstakePath           = apiPathPrefix + "/unstake"
	claimRewardPath       = apiPathPrefix + "/claim-reward"
	getPoolPath           = apiPathPrefix + "/pool"
	getUserStakePath      = apiPathPrefix + "/user"
	walletQueryParamName  = "wallet"
	stakeTxJsonKey        = "stakeTx"
	unstakeTxJsonKey      = "unstakeTx"
	claimRewardTxJsonKey  = "claimRewardTx"
	blockhashJsonKey      = "blockhash"
	layoutVersionJsonKey  = "layoutVersion"
	poolJsonKey           = "pool"
	userJsonKey           = "user"
	requestIdHeaderName   = "x-request-id"
	allowHeaderName       = "allow"
	contentTypeHeaderName = "content-type"

	jsonContentTypeHeaderValue = "application/json"

	requestDurationMetricName   = "Staking/Web/RequestDurationMs"
	throttledRequestsMetricName = "Staking/Web/ThrottledRequests"
)

// Service is the staking functionality served over HTTP.
type Service interface {
	Stake(ctx context.Context, wallet string, amount decimal.Decimal) (*staking.TransactionResult, error)
	Unstake(ctx context.Context, wallet string, amount decimal.Decimal) (*staking.TransactionResult, error)
	ClaimReward(ctx context.Context, wallet string) (*staking.TransactionResult, error)
	GetPool(ctx context.Context) (*staking.PoolInfo, error)
	GetUserStake(ctx context.Context, wallet string) (*staking.UserStake, error)
}

type Server struct {
	log             *logrus.Entry
	conf            *conf
	svc             Service
	limiter         *rate.LocalRateLimiter
	metricsProvider *newrelic.Application
}

func NewStakingServer(svc Service, metricsProvider *newrelic.Application, configProvider ConfigProvider) *Server {
	conf := configProvider()

	ctx := context.Background()
	limit := xrate.Limit(conf.requestsPerWallet.Get(ctx))
	burst := int(conf.requestBurst.Get(ctx))
	if burst < 1 {
		burst = 1
	}

	return &Server{
		log:             logrus.StandardLogger().WithField("type", "staking/web/server"),
		conf:            conf,
		svc:             svc,
		limiter:         rate.NewLocalRateLimiterWithBurst(limit, burst),
		metricsProvider: metricsProvider,
	}
}

// handlerFunc handles a request that has passed method checks. It returns the
// status code and body to write.
type handlerFunc func(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody)

func (s *Server) handler(path, method string, handle handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w, r, end := metrics.StartWebTransaction(s.metricsProvider, method+" "+path, w, r)
		defer end()

		requestId := uuid.New().String()
		w.Header().Set(requestIdHeaderName, requestId)

		log := s.log.WithFields(logrus.Fields{
			"path":       path,
			"request_id": requestId,
		})

		statusCode, body := func() (int, GenericApiResponseBody) {
			if r.Method != method {
				w.Header().Set(allowHeaderName, method)
				return http.StatusMethodNotAllowed, NewGenericApiFailureResponseBody(errors.Errorf("http %s expected", method))
			}

			ctx, cancel := context.WithTimeout(r.Context(), s.conf.requestTimeout.Get(r.Context()))
			defer cancel()

			return handle(ctx, log, r)
		}()

		w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
		w.WriteHeader(statusCode)
		if _, err := w.Write([]byte(body.ToString())); err != nil {
			log.WithError(err).Info("failed to write body")
		}

		metrics.RecordDuration(r.Context(), requestDurationMetricName, time.Since(start))
	}
}

func (s *Server) stakeHandler(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody) {
	return s.handleAmountWorkflow(ctx, log, r, s.svc.Stake, stakeTxJsonKey)
}

func (s *Server) unstakeHandler(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody) {
	return s.handleAmountWorkflow(ctx, log, r, s.svc.Unstake, unstakeTxJsonKey)
}

func (s *Server) handleAmountWorkflow(
	ctx context.Context,
	log *logrus.Entry,
	r *http.Request,
	workflow func(context.Context, string, decimal.Decimal) (*staking.TransactionResult, error),
	txJsonKey string,
) (int, GenericApiResponseBody) {
	req, err := newAmountRequestFromHttpContext(r)
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}
	log = log.WithFields(logrus.Fields{
		"wallet": req.WalletAddress,
		"amount": req.Amount.String(),
	})

	if statusCode, body, ok := s.throttle(ctx, log, req.WalletAddress); !ok {
		return statusCode, body
	}

	result, err := workflow(ctx, req.WalletAddress, req.Amount)
	if err != nil {
		return s.failure(log, err)
	}

	return http.StatusOK, newTransactionResponseBody(result, txJsonKey)
}

func (s *Server) claimRewardHandler(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody) {
	req, err := newWalletRequestFromHttpContext(r)
	if err != nil {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(err)
	}
	log = log.WithField("wallet", req.WalletAddress)

	if statusCode, body, ok := s.throttle(ctx, log, req.WalletAddress); !ok {
		return statusCode, body
	}

	result, err := s.svc.ClaimReward(ctx, req.WalletAddress)
	if err != nil {
		return s.failure(log, err)
	}

	return http.StatusOK, newTransactionResponseBody(result, claimRewardTxJsonKey)
}

func (s *Server) getPoolHandler(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody) {
	if statusCode, body, ok := s.throttle(ctx, log, "ip:"+netutil.GetClientIP(r)); !ok {
		return statusCode, body
	}

	info, err := s.svc.GetPool(ctx)
	if err != nil {
		return s.failure(log, err)
	}

	respBody := NewGenericApiSuccessResponseBody()
	respBody[poolJsonKey] = newPoolView(info)
	return http.StatusOK, respBody
}

func (s *Server) getUserStakeHandler(ctx context.Context, log *logrus.Entry, r *http.Request) (int, GenericApiResponseBody) {
	walletQueryParam := r.URL.Query()[walletQueryParamName]
	if len(walletQueryParam) < 1 || len(walletQueryParam[0]) == 0 {
		return http.StatusBadRequest, NewGenericApiFailureResponseBody(errors.New("wallet query parameter missing"))
	}
	wallet := walletQueryParam[0]
	log = log.WithField("wallet", wallet)

	if statusCode, body, ok := s.throttle(ctx, log, wallet); !ok {
		return statusCode, body
	}

	stake, err := s.svc.GetUserStake(ctx, wallet)
	if err != nil {
		return s.failure(log, err)
	}

	respBody := NewGenericApiSuccessResponseBody()
	respBody[userJsonKey] = newUserStakeView(stake)
	return http.StatusOK, respBody
}

func (s *Server) throttle(ctx context.Context, log *logrus.Entry, key string) (int, GenericApiResponseBody, bool) {
	allowed, err := s.limiter.Allow(key)
	if err != nil {
		log.WithError(err).Warn("failure checking rate limit")
		return http.StatusInternalServerError, NewGenericApiFailureResponseBody(errors.New("internal server error")), false
	}
	if !allowed {
		log.Debug("request throttled")
		metrics.RecordCount(ctx, throttledRequestsMetricName, 1)
		return http.StatusTooManyRequests, NewGenericApiFailureResponseBody(errTooManyRequests), false
	}
	return 0, nil, true
}

func (s *Server) failure(log *logrus.Entry, err error) (int, GenericApiResponseBody) {
	statusCode, err := HandleStakingErrorInWebContext(err)
	if statusCode >= http.StatusInternalServerError {
		log.WithError(err).Warn("failure handling staking request")
	} else {
		log.WithError(err).Debug("rejected staking request")
	}
	return statusCode, NewGenericApiFailureResponseBody(err)
}

func newTransactionResponseBody(result *staking.TransactionResult, txJsonKey string) GenericApiResponseBody {
	respBody := NewGenericApiSuccessResponseBody()
	respBody[txJsonKey] = result.Encoded
	respBody[blockhashJsonKey] = result.Blockhash.ToBase58()
	respBody[layoutVersionJsonKey] = result.LayoutVersion.String()
	return respBody
}

// PruneThrottles forgets wallets that haven't made a request within idle.
func (s *Server) PruneThrottles(idle time.Duration) int {
	return s.limiter.Prune(idle)
}

func (s *Server) GetHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		stakePath:        s.handler(stakePath, http.MethodPost, s.stakeHandler),
		unstakePath:      s.handler(unstakePath, http.MethodPost, s.unstakeHandler),
		claimRewardPath:  s.handler(claimRewardPath, http.MethodPost, s.claimRewardHandler),
		getPoolPath:      s.handler(getPoolPath, http.MethodGet, s.getPoolHandler),
		getUserStakePath: s.handler(getUserStakePath, http.MethodGet, s.getUserStakeHandler),
	}
}
