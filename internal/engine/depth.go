package engine

// DepthLevel is one reported price level: its tick, aggregate resting
// quantity, and order count.
type DepthLevel struct {
	Price    int32
	Quantity int64
	Orders   int
}

// DepthSnapshot is a point-in-time view of the top of book on both sides.
type DepthSnapshot struct {
	Bids []DepthLevel // best first (highest tick first)
	Asks []DepthLevel // best first (lowest tick first)
}

// Spread returns bestAsk - bestBid and reports whether both sides were
// non-empty when the snapshot was taken.
func (d DepthSnapshot) Spread() (int32, bool) {
	if len(d.Bids) == 0 || len(d.Asks) == 0 {
		return 0, false
	}
	return d.Asks[0].Price - d.Bids[0].Price, true
}

// Depth returns the top maxLevels non-empty levels per side, best price
// first. This is a pull-only, synchronous read; the engine never starts
// a goroutine or ticker of its own (see package doc); any periodic
// publishing of depth snapshots is the caller's responsibility.
func (e *Engine) Depth(maxLevels int) DepthSnapshot {
	var snap DepthSnapshot
	if maxLevels <= 0 {
		return snap
	}

	for i := e.ladder.bestBid; i >= 0 && len(snap.Bids) < maxLevels; i-- {
		lvl := &e.ladder.bids[i]
		if lvl.isEmpty() {
			continue
		}
		snap.Bids = append(snap.Bids, DepthLevel{
			Price:    e.ladder.tick(i),
			Quantity: lvl.totalQuantity,
			Orders:   lvl.count,
		})
	}

	for i := e.ladder.bestAsk; i < e.ladder.numLevels && len(snap.Asks) < maxLevels; i++ {
		lvl := &e.ladder.asks[i]
		if lvl.isEmpty() {
			continue
		}
		snap.Asks = append(snap.Asks, DepthLevel{
			Price:    e.ladder.tick(i),
			Quantity: lvl.totalQuantity,
			Orders:   lvl.count,
		})
	}

	return snap
}
