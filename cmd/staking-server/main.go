package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/solexplorer/staking-server/pkg/app"
	staking_web "github.com/solexplorer/staking-server/pkg/server/web/staking"
	"github.com/solexplorer/staking-server/pkg/solana"
	"github.com/solexplorer/staking-server/pkg/staking"
)

const (
	throttlePruneSchedule = "@every 1m"
	throttleIdleTimeout   = 10 * time.Minute
)

type stakingApp struct {
	log *logrus.Entry

	server *staking_web.Server
	cron   *cron.Cron

	stopOnce   sync.Once
	shutdownCh chan struct{}
}

func (a *stakingApp) Init(_ app.Config, metricsProvider *newrelic.Application) error {
	svc := staking.NewService(solana.New, staking.WithEnvConfigs())
	a.server = staking_web.NewStakingServer(svc, metricsProvider, staking_web.WithEnvConfigs())

	a.cron = cron.New()
	_, err := a.cron.AddFunc(throttlePruneSchedule, func() {
		if pruned := a.server.PruneThrottles(throttleIdleTimeout); pruned > 0 {
			a.log.WithField("pruned", pruned).Debug("pruned idle throttles")
		}
	})
	if err != nil {
		return errors.Wrap(err, "error scheduling throttle pruning")
	}
	a.cron.Start()

	return nil
}

func (a *stakingApp) RegisterWithHTTP(mux *http.ServeMux) {
	for path, handler := range a.server.GetHandlers() {
		mux.HandleFunc(path, handler)
	}
}

func (a *stakingApp) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

func (a *stakingApp) Stop() {
	a.stopOnce.Do(func() {
		if a.cron != nil {
			<-a.cron.Stop().Done()
		}
		close(a.shutdownCh)
	})
}

func main() {
	log := logrus.StandardLogger().WithField("type", "staking-server")

	err := app.Run(&stakingApp{
		log:        log,
		shutdownCh: make(chan struct{}),
	})
	if err != nil {
		log.WithError(err).Fatal("error running staking server")
	}
}
