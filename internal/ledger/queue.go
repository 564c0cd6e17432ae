package ledger

import "solana-wallet-pnl/internal/domain"

// lotQueue is a FIFO of lots backed by a slice. Consumed lots are released
// by advancing head and compacting once half the backing array is dead.
type lotQueue struct {
	lots []domain.Lot
	head int
}

func (q *lotQueue) push(lot domain.Lot) {
	q.lots = append(q.lots, lot)
}

func (q *lotQueue) len() int {
	return len(q.lots) - q.head
}

// front returns the oldest lot for in-place partial consumption.
func (q *lotQueue) front() *domain.Lot {
	return &q.lots[q.head]
}

func (q *lotQueue) pop() {
	q.lots[q.head] = domain.Lot{}
	q.head++
	if q.head == len(q.lots) {
		q.lots = q.lots[:0]
		q.head = 0
		return
	}
	if q.head > len(q.lots)/2 {
		n := copy(q.lots, q.lots[q.head:])
		q.lots = q.lots[:n]
		q.head = 0
	}
}

// snapshot returns a copy of the open lots, oldest first.
func (q *lotQueue) snapshot() []domain.Lot {
	out := make([]domain.Lot, q.len())
	copy(out, q.lots[q.head:])
	return out
}
