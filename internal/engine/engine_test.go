package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedTrade struct {
	qty            int64
	price          int32
	takerID        uint64
	makerID        uint64
}

type capturingSink struct {
	trades []recordedTrade
	closed []uint64
}

func (s *capturingSink) OnTrade(qty int64, price int32, takerID, makerID uint64) {
	s.trades = append(s.trades, recordedTrade{qty, price, takerID, makerID})
}

func (s *capturingSink) OnOrderClosed(id uint64) {
	s.closed = append(s.closed, id)
}

func newTestEngine(t *testing.T) (*Engine, *capturingSink) {
	t.Helper()
	sink := &capturingSink{}
	e, err := NewEngine(900, 1100, 16, 1000, sink)
	require.NoError(t, err)
	return e, sink
}

func TestFullCrossNoRest(t *testing.T) {
	e, sink := newTestEngine(t)

	res := e.Submit(Order{ID: 1, Side: Sell, Price: 1000, Qty: 5})
	require.Equal(t, FullyRested, res)

	res = e.Submit(Order{ID: 2, Side: Buy, Price: 1005, Qty: 5})
	require.Equal(t, FullyMatched, res)

	require.Len(t, sink.trades, 1)
	require.Equal(t, recordedTrade{qty: 5, price: 1000, takerID: 2, makerID: 1}, sink.trades[0])
	require.Equal(t, 0, e.LiveOrders())
}

func TestPartialFillLeavesMakerRemainder(t *testing.T) {
	e, sink := newTestEngine(t)

	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Sell, Price: 1000, Qty: 10}))
	require.Equal(t, FullyMatched, e.Submit(Order{ID: 2, Side: Buy, Price: 1005, Qty: 6}))

	require.Len(t, sink.trades, 1)
	require.Equal(t, int64(6), sink.trades[0].qty)
	require.Equal(t, 1, e.LiveOrders())

	require.False(t, e.Cancel(2))
	require.True(t, e.Cancel(1))
	require.False(t, e.Cancel(1))
}

func TestCancelIdempotence(t *testing.T) {
	e, _ := newTestEngine(t)

	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Buy, Price: 995, Qty: 7}))
	require.True(t, e.Cancel(1))
	require.False(t, e.Cancel(1))
	require.Equal(t, 0, e.LiveOrders())
}

func TestReplaceWithCross(t *testing.T) {
	e, sink := newTestEngine(t)

	require.Equal(t, FullyRested, e.Submit(Order{ID: 40, Side: Buy, Price: 995, Qty: 10}))
	require.Equal(t, FullyRested, e.Submit(Order{ID: 41, Side: Sell, Price: 1000, Qty: 4}))

	res := e.Replace(40, 1001, 6)
	require.True(t, res.Success)
	require.Equal(t, PartiallyRested, res.Add)

	require.Len(t, sink.trades, 1)
	require.Equal(t, recordedTrade{qty: 4, price: 1000, takerID: 40, makerID: 41}, sink.trades[0])

	require.Equal(t, 1, e.LiveOrders())
	ref, ok := e.index.lookup(40)
	require.True(t, ok)
	require.Equal(t, int32(1001), ref.price)
	require.Equal(t, int64(2), e.pool.get(ref.node).qty)

	_, ok = e.index.lookup(41)
	require.False(t, ok)
}

func TestFIFOWithinLevel(t *testing.T) {
	e, sink := newTestEngine(t)

	require.Equal(t, FullyRested, e.Submit(Order{ID: 100, Side: Buy, Price: 1000, Qty: 3}))
	require.Equal(t, FullyRested, e.Submit(Order{ID: 200, Side: Buy, Price: 1000, Qty: 3}))

	require.Equal(t, FullyMatched, e.Submit(Order{ID: 300, Side: Sell, Price: 1000, Qty: 3}))

	require.Len(t, sink.trades, 1)
	require.Equal(t, uint64(100), sink.trades[0].makerID)

	ref, ok := e.index.lookup(200)
	require.True(t, ok)
	require.Equal(t, int64(3), e.pool.get(ref.node).qty)

	_, ok = e.index.lookup(100)
	require.False(t, ok)
}

func TestReplaceMissingIDFails(t *testing.T) {
	e, sink := newTestEngine(t)

	res := e.Replace(999, 1000, 5)
	require.False(t, res.Success)
	require.Empty(t, sink.trades)
}

func TestReplaceCannotChangeSide(t *testing.T) {
	// There is no side parameter on Replace at all: this test documents the
	// contract rather than exercising a rejection path.
	e, _ := newTestEngine(t)
	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Buy, Price: 1000, Qty: 5}))
	res := e.Replace(1, 1000, 5)
	require.True(t, res.Success)

	ref, ok := e.index.lookup(1)
	require.True(t, ok)
	require.Equal(t, Buy, ref.side)
}

func TestRejectInvalidInput(t *testing.T) {
	e, sink := newTestEngine(t)

	require.Equal(t, Rejected, e.Submit(Order{ID: 1, Side: Buy, Price: 1000, Qty: 0}))
	require.Equal(t, Rejected, e.Submit(Order{ID: 1, Side: Buy, Price: 899, Qty: 1}))
	require.Equal(t, Rejected, e.Submit(Order{ID: 1, Side: Buy, Price: 1101, Qty: 1}))

	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Buy, Price: 1000, Qty: 1}))
	require.Equal(t, Rejected, e.Submit(Order{ID: 1, Side: Sell, Price: 1000, Qty: 1}))

	require.Empty(t, sink.trades)
	require.Equal(t, 1, e.LiveOrders())
}

func TestBoundaryTicksAccepted(t *testing.T) {
	e, _ := newTestEngine(t)
	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Buy, Price: 900, Qty: 1}))
	require.Equal(t, FullyRested, e.Submit(Order{ID: 2, Side: Sell, Price: 1100, Qty: 1}))
	require.Equal(t, 2, e.LiveOrders())
}

func TestNeverCrossedBookInvariant(t *testing.T) {
	e, _ := newTestEngine(t)
	require.Equal(t, FullyRested, e.Submit(Order{ID: 1, Side: Buy, Price: 995, Qty: 5}))
	require.Equal(t, FullyRested, e.Submit(Order{ID: 2, Side: Sell, Price: 1005, Qty: 5}))

	depth := e.Depth(10)
	require.Len(t, depth.Bids, 1)
	require.Len(t, depth.Asks, 1)
	require.Less(t, depth.Bids[0].Price, depth.Asks[0].Price)
}

func TestDepthReportsAggregateAndCount(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Submit(Order{ID: 1, Side: Buy, Price: 1000, Qty: 3})
	e.Submit(Order{ID: 2, Side: Buy, Price: 1000, Qty: 4})
	e.Submit(Order{ID: 3, Side: Buy, Price: 995, Qty: 2})

	depth := e.Depth(10)
	require.Len(t, depth.Bids, 2)
	require.Equal(t, int32(1000), depth.Bids[0].Price)
	require.Equal(t, int64(7), depth.Bids[0].Quantity)
	require.Equal(t, 2, depth.Bids[0].Orders)
	require.Equal(t, int32(995), depth.Bids[1].Price)
}

func TestDeterministicMixedWorkloadReplay(t *testing.T) {
	run := func() (trades int, filled int64, live int) {
		sink := &capturingSink{}
		e, err := NewEngine(900, 1100, 64, 200, sink)
		require.NoError(t, err)

		ops := deterministicOps(200, 12345)
		for _, op := range ops {
			switch op.kind {
			case opSubmit:
				e.Submit(op.order)
			case opCancel:
				e.Cancel(op.id)
			case opReplace:
				e.Replace(op.id, op.order.Price, op.order.Qty)
			}
		}
		for _, tr := range sink.trades {
			filled += tr.qty
		}
		return len(sink.trades), filled, e.LiveOrders()
	}

	t1, f1, l1 := run()
	t2, f2, l2 := run()
	require.Equal(t, t1, t2)
	require.Equal(t, f1, f2)
	require.Equal(t, l1, l2)
}

type opKind int

const (
	opSubmit opKind = iota
	opCancel
	opReplace
)

type testOp struct {
	kind  opKind
	id    uint64
	order Order
}

// deterministicOps builds a small, fixed pseudo-random op stream using a
// simple linear congruential generator so the test has no dependency on
// math/rand's version-specific sequence.
func deterministicOps(n int, seed uint64) []testOp {
	state := seed
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state
	}

	ops := make([]testOp, 0, n)
	liveIDs := make([]uint64, 0, n)
	var nextID uint64 = 1

	for i := 0; i < n; i++ {
		r := next() % 100
		switch {
		case r < 60 || len(liveIDs) == 0:
			id := nextID
			nextID++
			side := Buy
			if next()%2 == 0 {
				side = Sell
			}
			price := int32(900 + next()%201)
			qty := int64(1 + next()%20)
			ops = append(ops, testOp{kind: opSubmit, order: Order{ID: id, Side: side, Price: price, Qty: qty}})
			liveIDs = append(liveIDs, id)
		case r < 85:
			idx := int(next() % uint64(len(liveIDs)))
			id := liveIDs[idx]
			ops = append(ops, testOp{kind: opCancel, id: id})
			liveIDs = append(liveIDs[:idx], liveIDs[idx+1:]...)
		default:
			idx := int(next() % uint64(len(liveIDs)))
			id := liveIDs[idx]
			price := int32(900 + next()%201)
			qty := int64(1 + next()%20)
			ops = append(ops, testOp{kind: opReplace, id: id, order: Order{Price: price, Qty: qty}})
		}
	}
	return ops
}
