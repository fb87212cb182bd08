package application

import (
	"context"
	"sync"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Watcher periodically sweeps every pending queue to alert on freshly
// matured redeems and on vault reserves that no longer cover the claimable
// debt. It never mutates state, claims stay user-triggered.
type Watcher struct {
	repoManager ports.RepoManager
	vault       ports.VaultService
	alerts      ports.Alerts
	scheduler   ports.SchedulerService

	interval time.Duration

	mtx      sync.Mutex
	lastScan int64

	now func() int64
}

func NewWatcher(
	repoManager ports.RepoManager, vaultSvc ports.VaultService,
	alertsSvc ports.Alerts, schedulerSvc ports.SchedulerService,
	interval time.Duration,
) *Watcher {
	return &Watcher{
		repoManager: repoManager,
		vault:       vaultSvc,
		alerts:      alertsSvc,
		scheduler:   schedulerSvc,
		interval:    interval,
		now:         func() int64 { return time.Now().Unix() },
	}
}

func (w *Watcher) Start() error {
	w.mtx.Lock()
	w.lastScan = w.now()
	w.mtx.Unlock()

	if err := w.scheduler.ScheduleTaskRepeating(w.interval, w.scan); err != nil {
		return err
	}
	w.scheduler.Start()
	log.WithField("interval", w.interval).Debug("started redeem watcher")
	return nil
}

func (w *Watcher) Stop() {
	w.scheduler.Stop()
	log.Debug("stopped redeem watcher")
}

func (w *Watcher) scan() {
	ctx := context.Background()
	now := w.now()

	w.mtx.Lock()
	since := w.lastScan
	w.lastScan = now
	w.mtx.Unlock()

	settings, err := w.repoManager.Settings().Get(ctx)
	if err != nil {
		log.WithError(err).Warn("watcher: failed to load settings")
		return
	}
	redeems, err := w.repoManager.Redeems().GetAll(ctx)
	if err != nil {
		log.WithError(err).Warn("watcher: failed to load pending redeems")
		return
	}

	queuePositions := make(map[string]uint64)
	claimableOwed := make(map[string]uint64)
	for _, redeem := range redeems {
		index := queuePositions[redeem.Recipient]
		queuePositions[redeem.Recipient]++

		if !redeem.Claimable(settings.RedeemDelay, now) {
			continue
		}
		claimableOwed[redeem.Token] += redeem.Amount

		// matured since the previous sweep
		if redeem.Claimable(settings.RedeemDelay, since) {
			continue
		}
		if w.alerts == nil {
			continue
		}
		alert := ports.RedeemsMaturedAlert{
			Recipient: redeem.Recipient,
			Token:     redeem.Token,
			Amount:    redeem.Amount,
			Index:     index,
		}
		if err := w.alerts.Publish(ctx, ports.RedeemsMatured, alert); err != nil {
			log.WithError(err).Warn("watcher: failed to publish matured alert")
		}
	}

	for addr, owed := range claimableOwed {
		token, err := w.repoManager.Tokens().Get(ctx, addr)
		if err != nil || token == nil {
			log.WithError(err).WithField("token", addr).
				Warn("watcher: failed to load token")
			continue
		}
		reserve, err := w.vault.BalanceOf(ctx, addr)
		if err != nil {
			log.WithError(err).WithField("token", addr).
				Warn("watcher: failed to read vault reserve")
			continue
		}
		owedUnderlying := token.UnderlyingAmount(owed)
		if reserve.Cmp(owedUnderlying) >= 0 {
			continue
		}
		if w.alerts != nil {
			alert := ports.LiquidityShortfallAlert{
				Token:   addr,
				Owed:    owed,
				Reserve: reserve.String(),
			}
			if err := w.alerts.Publish(ctx, ports.LiquidityShortfall, alert); err != nil {
				log.WithError(err).Warn("watcher: failed to publish shortfall alert")
			}
		}
		log.WithFields(log.Fields{
			"token":   addr,
			"owed":    owedUnderlying.String(),
			"reserve": reserve.String(),
		}).Warn("claimable debt exceeds vault reserve")
	}
}
