package workers

import (
	"context"
	"time"

	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/services"

	"gorm.io/gorm"
)

type SubscriptionWorker struct {
	db                  *gorm.DB
	subscriptionService services.SubscriptionService
	interval            time.Duration
}

func NewSubscriptionWorker(db *gorm.DB, subscriptionService services.SubscriptionService, interval time.Duration) *SubscriptionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionWorker{
		db:                  db,
		subscriptionService: subscriptionService,
		interval:            interval,
	}
}

// Start запускает фоновые задачи для подписок
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.checkExpiredSubscriptions(ctx)
	go w.cleanExpiredTokens(ctx)
}

// checkExpiredSubscriptions помечает истекшие подписки. Первый проход
// выполняется сразу при старте, дальше по тикеру.
func (w *SubscriptionWorker) checkExpiredSubscriptions(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runExpirySweep()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Subscription worker stopped")
			return
		case <-ticker.C:
			w.runExpirySweep()
		}
	}
}

func (w *SubscriptionWorker) runExpirySweep() {
	processed, err := w.subscriptionService.EvaluateExpiry(w.db)
	if err != nil {
		logger.WorkerLog("subscription", "expiry_sweep", err)
		return
	}
	if processed > 0 {
		logger.Info("Expired subscriptions processed", "count", processed)
	}
}

// cleanExpiredTokens чистит просроченные refresh-токены раз в сутки
func (w *SubscriptionWorker) cleanExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := w.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
			if result.Error != nil {
				logger.WorkerLog("subscription", "token_cleanup", result.Error)
			} else if result.RowsAffected > 0 {
				logger.Info("Expired refresh tokens removed", "count", result.RowsAffected)
			}
		}
	}
}
