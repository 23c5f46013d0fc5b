package syncer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reelmates/reelmates-backend/pkg/config"
	"github.com/reelmates/reelmates-backend/pkg/logger"
)

type fakeSource struct {
	name   Collection
	err    error
	mu     sync.Mutex
	calls  int
	pulled chan struct{}
}

func newFakeSource(name Collection) *fakeSource {
	return &fakeSource{
		name:   name,
		pulled: make(chan struct{}, 32),
	}
}

func (f *fakeSource) Collection() Collection {
	return f.name
}

func (f *fakeSource) Pull(_ context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	select {
	case f.pulled <- struct{}{}:
	default:
	}
	return f.err
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitPull(t *testing.T, src *fakeSource) {
	t.Helper()
	select {
	case <-src.pulled:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s pull", src.name)
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func slowCadence() config.SyncConfig {
	return config.SyncConfig{
		MessagesInterval: time.Hour,
		PicksInterval:    time.Hour,
		InvitesInterval:  time.Hour,
	}
}

func TestOpenIsolatesFailedPulls(t *testing.T) {
	messages := newFakeSource(CollectionMessages)
	picks := newFakeSource(CollectionPicks)
	picks.err = errors.New("picks endpoint down")

	driver, err := NewDriver(DriverParams{
		Sources: []Source{messages, picks},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	defer driver.Close()

	err = driver.Open(context.Background())
	if err == nil {
		t.Fatal("expected combined error from failed pull")
	}
	if !strings.Contains(err.Error(), "picks") {
		t.Fatalf("expected error to name the failed collection, got %v", err)
	}
	if messages.count() != 1 {
		t.Fatalf("expected messages pulled despite picks failure, got %d calls", messages.count())
	}
}

func TestRefreshTriggersTargetedPull(t *testing.T) {
	messages := newFakeSource(CollectionMessages)
	picks := newFakeSource(CollectionPicks)

	driver, err := NewDriver(DriverParams{
		Sources: []Source{messages, picks},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	defer driver.Close()

	if err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	waitPull(t, messages)
	waitPull(t, picks)

	driver.Refresh(CollectionMessages)
	waitPull(t, messages)

	if got := picks.count(); got != 1 {
		t.Fatalf("expected picks untouched by messages refresh, got %d calls", got)
	}
}

func TestTickerDrivesRepeatedPulls(t *testing.T) {
	messages := newFakeSource(CollectionMessages)

	cadence := slowCadence()
	cadence.MessagesInterval = 10 * time.Millisecond
	driver, err := NewDriver(DriverParams{
		Sources: []Source{messages},
		Sync:    cadence,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	defer driver.Close()

	if err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 3; i++ {
		waitPull(t, messages)
	}
}

func TestCloseStopsTimers(t *testing.T) {
	messages := newFakeSource(CollectionMessages)

	cadence := slowCadence()
	cadence.MessagesInterval = 5 * time.Millisecond
	driver, err := NewDriver(DriverParams{
		Sources: []Source{messages},
		Sync:    cadence,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}

	if err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	waitPull(t, messages)
	driver.Close()

	settled := messages.count()
	time.Sleep(50 * time.Millisecond)
	if got := messages.count(); got != settled {
		t.Fatalf("expected no pulls after close, got %d then %d", settled, got)
	}

	// Closing twice is safe.
	driver.Close()
}

func TestOpenTwiceFails(t *testing.T) {
	driver, err := NewDriver(DriverParams{
		Sources: []Source{newFakeSource(CollectionMessages)},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	defer driver.Close()

	if err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := driver.Open(context.Background()); err == nil {
		t.Fatal("expected second open to fail")
	}
}

func TestNewDriverRejectsBadSources(t *testing.T) {
	if _, err := NewDriver(DriverParams{Sync: slowCadence(), Logger: testLogger()}); err == nil {
		t.Fatal("expected error without sources")
	}

	_, err := NewDriver(DriverParams{
		Sources: []Source{newFakeSource("watchlist")},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err == nil {
		t.Fatal("expected error for unknown collection")
	}

	_, err = NewDriver(DriverParams{
		Sources: []Source{newFakeSource(CollectionPicks), newFakeSource(CollectionPicks)},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err == nil {
		t.Fatal("expected error for duplicate collection")
	}
}

func TestPullsNeverTouchComposeBuffer(t *testing.T) {
	messages := newFakeSource(CollectionMessages)

	driver, err := NewDriver(DriverParams{
		Sources: []Source{messages},
		Sync:    slowCadence(),
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	defer driver.Close()

	driver.Compose().SetDraft("half-typed reply @bo", 20)
	if err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	driver.Refresh(CollectionMessages)
	waitPull(t, messages)

	snap := driver.Compose().Snapshot()
	if snap.Draft != "half-typed reply @bo" || snap.Cursor != 20 {
		t.Fatalf("expected compose buffer untouched by pulls, got %+v", snap)
	}
	if snap.Query == nil || snap.Query.Query != "bo" {
		t.Fatalf("expected mention query preserved, got %+v", snap.Query)
	}
}
