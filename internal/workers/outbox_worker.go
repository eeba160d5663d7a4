package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/elastic"
	"github.com/sirdesai22/hackollab/internal/metrics"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/notify"
)

const OpDelete = "DELETE"

// Loader reads the rows an index event refers to.
type Loader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetHackathon(ctx context.Context, id uuid.UUID) (*models.Hackathon, error)
}

// OutboxWorker drains the outbox: email events are rendered and mailed,
// index events are projected into Elasticsearch. ES may be nil, in which
// case index events are acknowledged without work.
type OutboxWorker struct {
	Queue    Queue
	Store    Loader
	Renderer *notify.Renderer
	Mailer   notify.Mailer
	ES       *es.Client

	PollInterval time.Duration
	DLQInterval  time.Duration
	BatchSize    int
	MaxAttempts  int
	Lease        time.Duration
	// DLQMaxRetries bounds how often a DLQ row is replayed before it is
	// marked terminal.
	DLQMaxRetries int
	// Backoff returns the delay before the given attempt is retried.
	Backoff func(attempt int) time.Duration
}

// permanent marks failures that retrying cannot fix.
type permanent struct{ error }

func (p permanent) Unwrap() error { return p.error }

func isPermanent(err error) bool {
	var perm permanent
	return errors.As(err, &perm)
}

func (w *OutboxWorker) defaults() {
	if w.PollInterval <= 0 {
		w.PollInterval = time.Second
	}
	if w.DLQInterval <= 0 {
		w.DLQInterval = 30 * time.Second
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 200
	}
	if w.MaxAttempts <= 0 {
		w.MaxAttempts = 5
	}
	if w.DLQMaxRetries <= 0 {
		w.DLQMaxRetries = 10
	}
	if w.Lease <= 0 {
		w.Lease = 5 * time.Minute
	}
	if w.Backoff == nil {
		w.Backoff = ExponentialBackoff(2*time.Second, 10*time.Minute)
	}
}

// ExponentialBackoff doubles base per attempt, capped at ceiling.
func ExponentialBackoff(base, ceiling time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt && d < ceiling; i++ {
			d *= 2
		}
		return min(d, ceiling)
	}
}

func (w *OutboxWorker) Run(ctx context.Context) {
	w.defaults()
	if w.ES != nil {
		if err := elastic.EnsureIndexes(ctx, w.ES); err != nil {
			log.Error().Err(err).Msg("ensure indexes")
		}
	}
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				log.Error().Err(err).Msg("outbox worker")
			}
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	events, err := w.Queue.FetchOutboxBatch(ctx, w.BatchSize, w.Lease)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	bi, err := w.bulkIndexer()
	if err != nil {
		return err
	}
	for _, e := range events {
		e := e
		w.dispatch(ctx, bi, e, func() { w.complete(ctx, e) }, func(err error) { w.fail(ctx, e, err) })
	}
	return w.closeIndexer(ctx, bi)
}

func (w *OutboxWorker) bulkIndexer() (esutil.BulkIndexer, error) {
	if w.ES == nil {
		return nil, nil
	}
	return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: w.ES, Index: "", FlushBytes: 5 << 20, NumWorkers: 2,
	})
}

func (w *OutboxWorker) closeIndexer(ctx context.Context, bi esutil.BulkIndexer) error {
	if bi == nil {
		return nil
	}
	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	if stats.NumAdded > 0 {
		log.Debug().Uint64("flushed", stats.NumFlushed).Uint64("failed", stats.NumFailed).Msg("bulk index")
	}
	return nil
}

// dispatch runs e and reports the outcome through done or failed. Index
// events report once the bulk indexer flushes them.
func (w *OutboxWorker) dispatch(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox, done func(), failed func(error)) {
	switch e.Kind {
	case models.KindEmail:
		if err := w.sendEmail(ctx, e); err != nil {
			failed(err)
			return
		}
		done()
	case models.KindIndex:
		if bi == nil {
			done()
			return
		}
		if err := w.addIndex(ctx, bi, e, done, failed); err != nil {
			failed(err)
		}
	default:
		failed(permanent{fmt.Errorf("unknown outbox kind %q", e.Kind)})
	}
}

func (w *OutboxWorker) sendEmail(ctx context.Context, e models.Outbox) error {
	p, err := notify.DecodePayload(e.Payload)
	if err != nil {
		return permanent{err}
	}
	msg, err := w.Renderer.Render(p)
	if err != nil {
		return permanent{err}
	}
	if err := w.Mailer.Send(ctx, msg); err != nil {
		return err
	}
	metrics.EmailsSent.WithLabelValues(p.Event).Inc()
	log.Info().Str("event", p.Event).Str("to", p.To).Int64("outbox_id", e.ID).Msg("email sent")
	return nil
}

func (w *OutboxWorker) addIndex(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox, done func(), failed func(error)) error {
	index, ok := elastic.IndexFor(e.EntityType)
	if !ok {
		return permanent{fmt.Errorf("unknown entity_type=%s", e.EntityType)}
	}
	if e.Op == OpDelete {
		return add(ctx, bi, index, e.EntityID.String(), "delete", nil, done, failed)
	}
	doc, err := w.buildDoc(ctx, e)
	if err != nil {
		return err
	}
	return add(ctx, bi, index, e.EntityID.String(), "index", doc, done, failed)
}

func (w *OutboxWorker) buildDoc(ctx context.Context, e models.Outbox) ([]byte, error) {
	switch e.EntityType {
	case elastic.EntityUser:
		u, err := w.Store.GetUser(ctx, e.EntityID)
		if err != nil {
			return nil, err
		}
		return elastic.BuildUserDoc(*u)
	case elastic.EntityProject:
		p, err := w.Store.GetProject(ctx, e.EntityID)
		if err != nil {
			return nil, err
		}
		return elastic.BuildProjectDoc(*p)
	case elastic.EntityHackathon:
		h, err := w.Store.GetHackathon(ctx, e.EntityID)
		if err != nil {
			return nil, err
		}
		return elastic.BuildHackathonDoc(*h)
	}
	return nil, permanent{fmt.Errorf("unknown entity_type=%s", e.EntityType)}
}

func add(ctx context.Context, bi esutil.BulkIndexer, index, docID, action string, body []byte, done func(), failed func(error)) error {
	item := esutil.BulkIndexerItem{
		Action:     action,
		DocumentID: docID,
		Index:      index,
		OnSuccess: func(context.Context, esutil.BulkIndexerItem, esutil.BulkIndexerResponseItem) {
			done()
		},
		OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			switch {
			case err != nil:
			case res.Error.Reason != "":
				err = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
			default:
				err = fmt.Errorf("status=%d failed to index", res.Status)
			}
			failed(err)
		},
	}
	if len(body) > 0 {
		item.Body = bytes.NewReader(body)
	}
	return bi.Add(ctx, item)
}

func (w *OutboxWorker) complete(ctx context.Context, e models.Outbox) {
	if err := w.Queue.MarkDone(ctx, e.ID); err != nil {
		log.Error().Err(err).Int64("outbox_id", e.ID).Msg("mark outbox done")
		return
	}
	metrics.ProcessedEvents.WithLabelValues(e.Kind).Inc()
}

// fail reschedules e with backoff, or moves it to the DLQ once attempts run
// out or the failure is permanent.
func (w *OutboxWorker) fail(ctx context.Context, e models.Outbox, cause error) {
	metrics.FailedEvents.WithLabelValues(e.Kind).Inc()
	e.Attempts++
	msg := cause.Error()

	terminal := isPermanent(cause)
	if terminal || e.Attempts >= w.MaxAttempts {
		if err := w.Queue.PutDLQ(ctx, e, msg, terminal); err != nil {
			log.Error().Err(err).Int64("outbox_id", e.ID).Msg("failed to insert into DLQ")
			return
		}
		log.Warn().Int64("outbox_id", e.ID).Str("kind", e.Kind).Str("op", e.Op).Str("reason", msg).Msg("outbox event moved to DLQ")
		return
	}

	next := time.Now().Add(w.Backoff(e.Attempts))
	if err := w.Queue.Reschedule(ctx, e.ID, e.Attempts, next, msg); err != nil {
		log.Error().Err(err).Int64("outbox_id", e.ID).Msg("reschedule outbox event")
		return
	}
	log.Warn().Int64("outbox_id", e.ID).Int("attempt", e.Attempts).Time("next", next).Str("reason", msg).Msg("outbox event rescheduled")
}
