package events

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

type fakeTxStarter struct {
	sequences map[string]int64
	failBegin bool
	scanErr   error
}

func (f *fakeTxStarter) BeginTx(ctx context.Context, opts *sql.TxOptions) (txRunner, error) {
	if f.failBegin {
		return nil, errors.New("begin failed")
	}
	return &fakeTx{starter: f}, nil
}

type fakeTx struct {
	starter *fakeTxStarter
}

func (f *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) rowScanner {
	if f.starter.scanErr != nil {
		return fakeRow{err: f.starter.scanErr}
	}
	partition := args[0].(string)
	f.starter.sequences[partition]++
	return fakeRow{value: f.starter.sequences[partition]}
}

func (f *fakeTx) Commit() error   { return nil }
func (f *fakeTx) Rollback() error { return nil }

type fakeRow struct {
	value int64
	err   error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	ptr, ok := dest[0].(*int64)
	if !ok {
		return errors.New("expected *int64 destination")
	}
	*ptr = f.value
	return nil
}

func TestNextSequenceIncrementsPerPartition(t *testing.T) {
	starter := &fakeTxStarter{sequences: make(map[string]int64)}
	repo := &SequenceRepository{db: starter}
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextSequence(ctx, "session-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected sequence %d, got %d", want, got)
		}
	}

	other, err := repo.NextSequence(ctx, "session-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other != 1 {
		t.Fatalf("expected independent partition to start at 1, got %d", other)
	}
}

func TestNextSequenceRequiresPartitionKey(t *testing.T) {
	repo := &SequenceRepository{db: &fakeTxStarter{sequences: make(map[string]int64)}}

	if _, err := repo.NextSequence(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty partition key")
	}
}

func TestNextSequencePropagatesErrors(t *testing.T) {
	ctx := context.Background()

	repo := &SequenceRepository{db: &fakeTxStarter{failBegin: true}}
	if _, err := repo.NextSequence(ctx, "session-1"); err == nil {
		t.Fatal("expected begin error to surface")
	}

	repo = &SequenceRepository{db: &fakeTxStarter{sequences: make(map[string]int64), scanErr: errors.New("scan failed")}}
	if _, err := repo.NextSequence(ctx, "session-1"); err == nil {
		t.Fatal("expected scan error to surface")
	}
}

func TestMemorySequencer(t *testing.T) {
	seq := NewMemorySequencer()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.NextSequence(ctx, "session-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	if _, err := seq.NextSequence(ctx, ""); err == nil {
		t.Fatal("expected error for empty partition key")
	}
}
