package observability

import (
	"context"
	"time"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/store"
)

// instrumentedProvider records every call of the wrapped provider.
type instrumentedProvider struct {
	next    meeting.Provider
	metrics *Metrics
}

// InstrumentProvider wraps p so that each call is counted and timed.
func InstrumentProvider(p meeting.Provider, m *Metrics) meeting.Provider {
	if m == nil {
		return p
	}
	return &instrumentedProvider{next: p, metrics: m}
}

func (p *instrumentedProvider) Name() string {
	return p.next.Name()
}

func (p *instrumentedProvider) Create(ctx context.Context, topic string, start time.Time, durationMinutes int) (*store.MeetingRecord, error) {
	began := time.Now()
	record, err := p.next.Create(ctx, topic, start, durationMinutes)
	p.metrics.RecordProviderCall(p.next.Name(), meeting.OpCreate, err, time.Since(began))
	return record, err
}

func (p *instrumentedProvider) List(ctx context.Context, status meeting.Status, limit int) ([]*store.MeetingRecord, error) {
	began := time.Now()
	list, err := p.next.List(ctx, status, limit)
	p.metrics.RecordProviderCall(p.next.Name(), "list", err, time.Since(began))
	return list, err
}

func (p *instrumentedProvider) Delete(ctx context.Context, id string) error {
	began := time.Now()
	err := p.next.Delete(ctx, id)
	p.metrics.RecordProviderCall(p.next.Name(), meeting.OpDelete, err, time.Since(began))
	return err
}

func (p *instrumentedProvider) Get(ctx context.Context, id string) (*store.MeetingRecord, error) {
	began := time.Now()
	record, err := p.next.Get(ctx, id)
	p.metrics.RecordProviderCall(p.next.Name(), "get", err, time.Since(began))
	return record, err
}

var _ meeting.Provider = (*instrumentedProvider)(nil)
