package workers

import (
	"context"
	"time"

	"github.com/sirdesai22/hackollab/internal/metrics"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
)

// Queue is the persistent side of the outbox and its dead-letter table.
type Queue interface {
	// FetchOutboxBatch claims up to limit due events for lease. Claimed
	// events become due again when the lease runs out without MarkDone.
	FetchOutboxBatch(ctx context.Context, limit int, lease time.Duration) ([]models.Outbox, error)
	MarkDone(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, attempts int, next time.Time, msg string) error
	PutDLQ(ctx context.Context, ob models.Outbox, msg string, terminal bool) error

	FetchDLQ(ctx context.Context, limit int) ([]models.DLQ, error)
	ResolveDLQ(ctx context.Context, id int64) error
	FailDLQ(ctx context.Context, id int64, msg string, terminal bool) error
}

type GormQueue struct {
	DB *gorm.DB
}

var _ Queue = (*GormQueue)(nil)

func (q *GormQueue) FetchOutboxBatch(ctx context.Context, limit int, lease time.Duration) ([]models.Outbox, error) {
	var evts []models.Outbox
	// FOR UPDATE SKIP LOCKED lets several workers share the table
	tx := q.DB.WithContext(ctx).Raw(`
		WITH cte AS (
		  SELECT id FROM outboxes
		  WHERE processed = false AND next_attempt_at <= now()
		  ORDER BY id ASC
		  LIMIT ?
		  FOR UPDATE SKIP LOCKED
		)
		UPDATE outboxes SET next_attempt_at = ?
		FROM cte
		WHERE outboxes.id = cte.id
		RETURNING outboxes.*`, limit, time.Now().Add(lease)).Scan(&evts)
	return evts, tx.Error
}

func (q *GormQueue) MarkDone(ctx context.Context, id int64) error {
	return q.DB.WithContext(ctx).Model(&models.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"processed": true, "last_error": ""}).Error
}

func (q *GormQueue) Reschedule(ctx context.Context, id int64, attempts int, next time.Time, msg string) error {
	return q.DB.WithContext(ctx).Model(&models.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"attempts": attempts, "next_attempt_at": next, "last_error": msg}).Error
}

// PutDLQ moves a failed outbox event into the DLQ table and retires it.
// Terminal rows are kept for inspection but never replayed.
func (q *GormQueue) PutDLQ(ctx context.Context, ob models.Outbox, msg string, terminal bool) error {
	metrics.DLQEvents.Inc()
	return q.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dlq := models.DLQ{
			OutboxID:   ob.ID,
			Kind:       ob.Kind,
			EntityType: ob.EntityType,
			EntityID:   ob.EntityID.String(),
			Op:         ob.Op,
			ErrorMsg:   msg,
			Payload:    ob.Payload,
			Attempts:   ob.Attempts,
			Terminal:   terminal,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(&dlq).Error; err != nil {
			return err
		}
		return tx.Model(&models.Outbox{}).Where("id = ?", ob.ID).
			Updates(map[string]any{"processed": true, "last_error": msg}).Error
	})
}

func (q *GormQueue) FetchDLQ(ctx context.Context, limit int) ([]models.DLQ, error) {
	var dlqs []models.DLQ
	err := q.DB.WithContext(ctx).Where("resolved = false AND terminal = false").Order("id ASC").Limit(limit).Find(&dlqs).Error
	return dlqs, err
}

func (q *GormQueue) ResolveDLQ(ctx context.Context, id int64) error {
	now := time.Now()
	return q.DB.WithContext(ctx).Model(&models.DLQ{}).Where("id = ?", id).Updates(map[string]any{
		"resolved":   true,
		"retried_at": &now,
	}).Error
}

func (q *GormQueue) FailDLQ(ctx context.Context, id int64, msg string, terminal bool) error {
	now := time.Now()
	return q.DB.WithContext(ctx).Model(&models.DLQ{}).Where("id = ?", id).Updates(map[string]any{
		"error_msg":  msg,
		"retries":    gorm.Expr("retries + 1"),
		"terminal":   terminal,
		"retried_at": &now,
	}).Error
}
