package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/notify"
	"github.com/sirdesai22/hackollab/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type rescheduled struct {
	attempts int
	next     time.Time
	msg      string
}

// fakeQueue records what the worker did with each event.
type fakeQueue struct {
	mu          sync.Mutex
	batch       []models.Outbox
	dlqRows     []models.DLQ
	done        []int64
	rescheduled map[int64]rescheduled
	dead        map[int64]string
	terminal    map[int64]bool
	resolved    []int64
	dlqFailed   map[int64]string
}

func newFakeQueue(events ...models.Outbox) *fakeQueue {
	return &fakeQueue{
		batch:       events,
		rescheduled: map[int64]rescheduled{},
		dead:        map[int64]string{},
		terminal:    map[int64]bool{},
		dlqFailed:   map[int64]string{},
	}
}

func (q *fakeQueue) FetchOutboxBatch(_ context.Context, limit int, _ time.Duration) ([]models.Outbox, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(limit, len(q.batch))
	out := q.batch[:n]
	q.batch = q.batch[n:]
	return out, nil
}

func (q *fakeQueue) MarkDone(_ context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.done = append(q.done, id)
	return nil
}

func (q *fakeQueue) Reschedule(_ context.Context, id int64, attempts int, next time.Time, msg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rescheduled[id] = rescheduled{attempts, next, msg}
	return nil
}

func (q *fakeQueue) PutDLQ(_ context.Context, ob models.Outbox, msg string, terminal bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead[ob.ID] = msg
	q.terminal[ob.ID] = terminal
	return nil
}

func (q *fakeQueue) FetchDLQ(context.Context, int) ([]models.DLQ, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dlqRows, nil
}

func (q *fakeQueue) ResolveDLQ(_ context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resolved = append(q.resolved, id)
	return nil
}

func (q *fakeQueue) FailDLQ(_ context.Context, id int64, msg string, terminal bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dlqFailed[id] = msg
	q.terminal[id] = terminal
	return nil
}

func emailEvent(t *testing.T, id int64, attempts int) models.Outbox {
	t.Helper()
	ob, ok := notify.Payload{
		Event: notify.EventInterestShown, To: "owner@example.com",
		ActorName: "Ada", ProjectTitle: "Voice", ProjectID: uuid.New(), ActorID: uuid.New(),
	}.Outbox("project", uuid.New())
	require.True(t, ok)
	ob.ID = id
	ob.Attempts = attempts
	return ob
}

func newWorker(t *testing.T, q Queue, m notify.Mailer) *OutboxWorker {
	t.Helper()
	r, err := notify.NewRenderer("http://localhost:5173")
	require.NoError(t, err)
	w := &OutboxWorker{
		Queue: q, Store: storetest.New(), Renderer: r, Mailer: m,
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Minute },
	}
	w.defaults()
	return w
}

func TestProcessOnceSendsEmail(t *testing.T) {
	q := newFakeQueue(emailEvent(t, 1, 0))
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.To == "owner@example.com" && msg.Subject == "Ada is interested in Voice"
	})).Return(nil).Once()

	w := newWorker(t, q, m)
	require.NoError(t, w.processOnce(context.Background()))

	m.AssertExpectations(t)
	assert.Equal(t, []int64{1}, q.done)
	assert.Empty(t, q.rescheduled)
	assert.Empty(t, q.dead)
}

func TestProcessOnceReschedulesTransientFailure(t *testing.T) {
	q := newFakeQueue(emailEvent(t, 7, 0))
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp: 421 try later"))

	w := newWorker(t, q, m)
	before := time.Now()
	require.NoError(t, w.processOnce(context.Background()))

	r, ok := q.rescheduled[7]
	require.True(t, ok)
	assert.Equal(t, 1, r.attempts)
	assert.Contains(t, r.msg, "421")
	assert.True(t, r.next.After(before.Add(59*time.Second)))
	assert.Empty(t, q.done)
	assert.Empty(t, q.dead)
}

func TestProcessOnceMovesExhaustedEventToDLQ(t *testing.T) {
	q := newFakeQueue(emailEvent(t, 9, 2))
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	w := newWorker(t, q, m)
	require.NoError(t, w.processOnce(context.Background()))

	assert.Equal(t, "connection refused", q.dead[9])
	assert.False(t, q.terminal[9], "exhausted events stay replayable")
	assert.Empty(t, q.rescheduled)
}

func TestProcessOncePermanentFailureSkipsRetry(t *testing.T) {
	bad := models.Outbox{ID: 3, Kind: models.KindEmail, Op: "invite_sent", Payload: []byte(`{"event":"invite_sent"}`)}
	unknown := models.Outbox{ID: 4, Kind: "sms"}
	q := newFakeQueue(bad, unknown)
	m := new(mockMailer)

	w := newWorker(t, q, m)
	require.NoError(t, w.processOnce(context.Background()))

	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Contains(t, q.dead[3], "no recipient")
	assert.Contains(t, q.dead[4], "unknown outbox kind")
	assert.True(t, q.terminal[3])
	assert.True(t, q.terminal[4])
}

func TestIndexEventsAcknowledgedWithoutElasticsearch(t *testing.T) {
	q := newFakeQueue(models.Outbox{ID: 5, Kind: models.KindIndex, EntityType: "project", EntityID: uuid.New(), Op: "UPSERT"})
	w := newWorker(t, q, new(mockMailer))
	require.NoError(t, w.processOnce(context.Background()))
	assert.Equal(t, []int64{5}, q.done)
}

func TestRetryDLQ(t *testing.T) {
	good := emailEvent(t, 11, 5)
	q := newFakeQueue()
	q.dlqRows = []models.DLQ{
		{ID: 1, OutboxID: 11, Kind: models.KindEmail, EntityType: "project", EntityID: good.EntityID.String(), Op: good.Op, Payload: good.Payload},
		{ID: 2, OutboxID: 12, Kind: models.KindEmail, Op: "invite_sent", Payload: []byte(`not json`)},
	}
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	w := newWorker(t, q, m)
	require.NoError(t, w.retryOnce(context.Background()))

	m.AssertExpectations(t)
	assert.Equal(t, []int64{1}, q.resolved)
	assert.Contains(t, q.dlqFailed[2], "decode email payload")
	assert.True(t, q.terminal[2], "undecodable payloads are never replayed again")
}

func TestRetryDLQMarksTerminalAfterMaxRetries(t *testing.T) {
	ev := emailEvent(t, 21, 5)
	row := func(id int64, retries int) models.DLQ {
		return models.DLQ{ID: id, OutboxID: 21, Kind: models.KindEmail, EntityType: "project",
			EntityID: ev.EntityID.String(), Op: ev.Op, Payload: ev.Payload, Retries: retries}
	}
	q := newFakeQueue()
	q.dlqRows = []models.DLQ{row(1, 0), row(2, 2)}
	m := new(mockMailer)
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	w := newWorker(t, q, m)
	w.DLQMaxRetries = 3
	require.NoError(t, w.retryOnce(context.Background()))

	assert.Equal(t, "connection refused", q.dlqFailed[1])
	assert.False(t, q.terminal[1])
	assert.True(t, q.terminal[2])
	assert.Empty(t, q.resolved)
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(2*time.Second, 10*time.Second)
	assert.Equal(t, 2*time.Second, b(1))
	assert.Equal(t, 4*time.Second, b(2))
	assert.Equal(t, 8*time.Second, b(3))
	assert.Equal(t, 10*time.Second, b(4))
	assert.Equal(t, 10*time.Second, b(20))
}
