package redisstore

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"

	applog "loanschedule/internal/log"
	"loanschedule/internal/store"
	"loanschedule/internal/store/storetest"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := applog.New(applog.Config{Component: applog.ComponentStorage, Writer: &bytes.Buffer{}})
	s, err := New(context.Background(), Options{Addr: mr.Addr(), KeyPrefix: prefix}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStoreContract(t *testing.T) {
	s, _ := newTestStore(t, "test:")
	storetest.Exercise(t, s)
}

func TestRedisStoreKeysAndRows(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, "loans:")

	sched := storetest.Schedule(t, 1000000, 12, "6")
	if err := s.Save(ctx, store.RecordFromParams(sched.Params), sched); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("loans:loan_details") {
		t.Fatalf("expected record under prefixed key, keys: %v", mr.Keys())
	}

	rows, err := s.LoadRows(ctx)
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if !reflect.DeepEqual(rows, sched.Rows) {
		t.Fatalf("stored rows differ from generated rows")
	}
}

func TestRedisStoreCorruptRecord(t *testing.T) {
	s, mr := newTestStore(t, "")
	if err := mr.Set("loan_details", "{oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := s.Load(context.Background())
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := New(context.Background(), Options{Addr: addr}, nil); err == nil {
		t.Fatalf("expected ping error for closed server")
	}
}
