package httpapi

import (
	"testing"

	"github.com/danielavelez12/goupromo/internal/cart"
)

func TestQueueLatestKeepsNewestSnapshot(t *testing.T) {
	updates := make(chan cart.Snapshot, 1)

	// A burst of mutations with no consumer: only the newest must survive.
	for total := 1; total <= 5; total++ {
		queueLatest(updates, cart.Snapshot{Total: float64(total)})
	}

	got := <-updates
	if got.Total != 5 {
		t.Fatalf("expected newest snapshot (total 5), got %v", got.Total)
	}

	select {
	case extra := <-updates:
		t.Fatalf("expected queue drained, got %+v", extra)
	default:
	}
}

func TestQueueLatestDeliversWhenConsumerKeepsUp(t *testing.T) {
	updates := make(chan cart.Snapshot, 1)

	queueLatest(updates, cart.Snapshot{Total: 1})
	if got := <-updates; got.Total != 1 {
		t.Fatalf("expected total 1, got %v", got.Total)
	}

	queueLatest(updates, cart.Snapshot{Total: 2})
	if got := <-updates; got.Total != 2 {
		t.Fatalf("expected total 2, got %v", got.Total)
	}
}
