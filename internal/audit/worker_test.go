package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries []OutboxEntry
	sent    []uuid.UUID
}

func (f *fakeSource) Pending(_ context.Context, limit int) ([]OutboxEntry, error) {
	var out []OutboxEntry
	for _, e := range f.entries {
		if len(out) == limit {
			break
		}
		if !f.isSent(e.ID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSource) MarkSent(_ context.Context, id uuid.UUID) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeSource) isSent(id uuid.UUID) bool {
	for _, s := range f.sent {
		if s == id {
			return true
		}
	}
	return false
}

type fakeSink struct {
	published [][]byte
	failOn    map[string]bool
}

func (f *fakeSink) Publish(_ context.Context, _, value []byte) error {
	if f.failOn[string(value)] {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, value)
	return nil
}

func newEntry(action string) OutboxEntry {
	return OutboxEntry{
		ID:          uuid.New(),
		AggregateID: uuid.New(),
		Action:      action,
		Payload:     []byte(`{"action":"` + action + `"}`),
	}
}

func TestWorker_PublishesAndMarksSent(t *testing.T) {
	source := &fakeSource{entries: []OutboxEntry{newEntry("loan_created"), newEntry("loan_returned")}}
	sink := &fakeSink{}
	w := NewWorker(source, sink, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	require.NoError(t, w.processPending(context.Background()))

	assert.Len(t, sink.published, 2)
	assert.Len(t, source.sent, 2)
}

func TestWorker_FailedPublishStaysPending(t *testing.T) {
	ok := newEntry("loan_created")
	bad := newEntry("loan_renewed")
	source := &fakeSource{entries: []OutboxEntry{ok, bad}}
	sink := &fakeSink{failOn: map[string]bool{string(bad.Payload): true}}
	w := NewWorker(source, sink, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	require.NoError(t, w.processPending(context.Background()))

	// The good entry went out, the failed one is retried next tick.
	assert.Equal(t, []uuid.UUID{ok.ID}, source.sent)

	pending, err := source.Pending(context.Background(), outboxBatchSize)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bad.ID, pending[0].ID)
}
