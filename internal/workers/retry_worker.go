package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/metrics"
	"github.com/sirdesai22/hackollab/internal/models"
)

const dlqBatch = 50

// RetryDLQ replays unresolved, non-terminal DLQ rows every DLQInterval.
func (w *OutboxWorker) RetryDLQ(ctx context.Context) {
	w.defaults()
	ticker := time.NewTicker(w.DLQInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.retryOnce(ctx); err != nil {
				log.Error().Err(err).Msg("DLQ retry")
			}
		}
	}
}

func (w *OutboxWorker) retryOnce(ctx context.Context) error {
	dlqs, err := w.Queue.FetchDLQ(ctx, dlqBatch)
	if err != nil {
		return err
	}
	if len(dlqs) == 0 {
		return nil
	}

	bi, err := w.bulkIndexer()
	if err != nil {
		return err
	}
	for _, d := range dlqs {
		d := d
		log.Info().Int64("dlq_id", d.ID).Str("entity", d.EntityType).Str("op", d.Op).Msg("retrying DLQ record")
		entityID, _ := uuid.Parse(d.EntityID)
		ob := models.Outbox{
			ID:         d.OutboxID,
			Kind:       d.Kind,
			EntityType: d.EntityType,
			EntityID:   entityID,
			Op:         d.Op,
			Payload:    d.Payload,
			Attempts:   d.Attempts,
		}
		w.dispatch(ctx, bi, ob,
			func() {
				if err := w.Queue.ResolveDLQ(ctx, d.ID); err != nil {
					log.Error().Err(err).Int64("dlq_id", d.ID).Msg("resolve DLQ record")
					return
				}
				metrics.ProcessedEvents.WithLabelValues(d.Kind).Inc()
				log.Info().Int64("dlq_id", d.ID).Msg("DLQ record resolved")
			},
			func(cause error) {
				terminal := isPermanent(cause) || d.Retries+1 >= w.DLQMaxRetries
				if err := w.Queue.FailDLQ(ctx, d.ID, cause.Error(), terminal); err != nil {
					log.Error().Err(err).Int64("dlq_id", d.ID).Msg("update DLQ record")
					return
				}
				if terminal {
					log.Warn().Int64("dlq_id", d.ID).Str("reason", cause.Error()).Msg("DLQ record marked terminal")
				}
			},
		)
	}
	return w.closeIndexer(ctx, bi)
}
