package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/pkg/logger"
	"travel-records-service/pkg/metrics"
)

type recordingMirror struct {
	mu     sync.Mutex
	synced [][]entity.Record
	fail   bool
	calls  chan struct{}
}

func newRecordingMirror() *recordingMirror {
	return &recordingMirror{calls: make(chan struct{}, 16)}
}

func (m *recordingMirror) Name() string { return "recording" }

func (m *recordingMirror) Sync(_ context.Context, records []entity.Record) error {
	m.mu.Lock()
	m.synced = append(m.synced, records)
	fail := m.fail
	m.mu.Unlock()
	m.calls <- struct{}{}
	if fail {
		return errors.New("mirror unavailable")
	}
	return nil
}

func (m *recordingMirror) last() []entity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.synced) == 0 {
		return nil
	}
	return m.synced[len(m.synced)-1]
}

func waitForSync(t *testing.T, m *recordingMirror) {
	t.Helper()
	select {
	case <-m.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirror sync")
	}
}

func TestMirrorWorker_PublishKeepsLatest(t *testing.T) {
	mirror := newRecordingMirror()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewMirrorWorker(mirror, time.Second, m, logger.NewNopLogger())

	w.Publish([]entity.Record{})
	w.Publish(sampleSnapshot(1))
	w.Publish(sampleSnapshot(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	waitForSync(t, mirror)
	cancel()
	<-done

	if got := len(mirror.last()); got != 2 {
		t.Errorf("synced snapshot has %d records, want the latest with 2", got)
	}
	if got := testutil.ToFloat64(m.MirrorSyncs.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok syncs = %v, want 1", got)
	}
}

func TestMirrorWorker_FlushesOnShutdown(t *testing.T) {
	mirror := newRecordingMirror()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewMirrorWorker(mirror, time.Second, m, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Publish(sampleSnapshot(3))
	w.Run(ctx)

	if got := len(mirror.last()); got != 3 {
		t.Errorf("flushed snapshot has %d records, want 3", got)
	}
}

func TestMirrorWorker_CountsFailures(t *testing.T) {
	mirror := newRecordingMirror()
	mirror.fail = true
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewMirrorWorker(mirror, time.Second, m, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Publish(sampleSnapshot(1))
	w.Run(ctx)

	if got := testutil.ToFloat64(m.MirrorSyncs.WithLabelValues("error")); got != 1 {
		t.Errorf("error syncs = %v, want 1", got)
	}
}

func TestRecordService_PublishesAfterSave(t *testing.T) {
	mirror := newRecordingMirror()
	env := newTestEnv(t, afero.NewMemMapFs())
	w := NewMirrorWorker(mirror, time.Second, env.metrics, logger.NewNopLogger())
	env.service.SetPublisher(w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	mustCreate(t, env.service, airlineData("Delta"))
	waitForSync(t, mirror)

	if got := mirror.last(); len(got) != 1 || got[0].RecordKind() != entity.KindAirline {
		t.Errorf("mirrored snapshot = %v, want one airline", got)
	}
}

func sampleSnapshot(n int) []entity.Record {
	out := make([]entity.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, entity.Airline{Base: entity.Base{ID: i, Type: entity.KindAirline}, CompanyName: "Delta"})
	}
	return out
}
