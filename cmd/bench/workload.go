package main

import (
	"math/rand"

	"github.com/aeromatch/internal/engine"
)

// opKind is which of the three engine operations a generated step drives.
type opKind uint8

const (
	opAdd opKind = iota
	opCancel
	opReplace
)

// mix is the validated add/cancel/replace percentage split from the CLI.
type mix struct {
	Add     int
	Cancel  int
	Replace int
}

func (m mix) valid() bool {
	return m.Add >= 0 && m.Cancel >= 0 && m.Replace >= 0 && m.Add+m.Cancel+m.Replace == 100
}

// pick returns which operation kind to drive next, using a uniform draw
// over [0, 100) against the cumulative mix thresholds.
func (m mix) pick(rng *rand.Rand) opKind {
	r := rng.Intn(100)
	if r < m.Add {
		return opAdd
	}
	if r < m.Add+m.Cancel {
		return opCancel
	}
	return opReplace
}

// liveSet mirrors the client-side tracker the spec requires at §6/§8: the
// driver's own record of which ids are currently resting, added to whenever
// a submit rests a remainder and pruned whenever the engine reports a
// closed id or a cancel succeeds. This is the benchmark collaborator's
// bookkeeping, not the engine's; the driver compares its size against
// engine.LiveOrders() at every batch boundary (spec scenario 6).
type liveSet struct {
	ids   map[uint64]struct{}
	order []uint64 // insertion order, for picking a random existing id
}

func newLiveSet() *liveSet {
	return &liveSet{ids: make(map[uint64]struct{})}
}

func (s *liveSet) add(id uint64) {
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *liveSet) remove(id uint64) {
	delete(s.ids, id)
}

func (s *liveSet) randomID(rng *rand.Rand) (uint64, bool) {
	// Lazily compact stale entries left behind by prior removes rather
	// than scanning the whole slice on every pick.
	for len(s.order) > 0 {
		candidate := s.order[rng.Intn(len(s.order))]
		if _, ok := s.ids[candidate]; ok {
			return candidate, true
		}
		s.compact()
	}
	return 0, false
}

func (s *liveSet) compact() {
	fresh := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.ids[id]; ok {
			fresh = append(fresh, id)
		}
	}
	s.order = fresh
}

func (s *liveSet) len() int {
	return len(s.ids)
}

// generator produces a deterministic op stream from a seed: add a new
// order priced to cross with probability crossPct, or pick an existing
// resting id to cancel/replace.
type generator struct {
	rng      *rand.Rand
	minTick  int32
	maxTick  int32
	crossPct int
	nextID   uint64
	live     *liveSet
}

func newGenerator(seed int64, minTick, maxTick int32, crossPct int) *generator {
	return &generator{
		rng:      rand.New(rand.NewSource(seed)),
		minTick:  minTick,
		maxTick:  maxTick,
		crossPct: crossPct,
		nextID:   1,
		live:     newLiveSet(),
	}
}

// nextOrder synthesizes a fresh order. With probability crossPct it is
// priced to be immediately marketable against whatever currently rests on
// the opposite side (approximated here by biasing toward the band's
// midpoint, since the generator does not peek at engine state); otherwise
// it is priced away from the midpoint so it is more likely to rest.
func (g *generator) nextOrder() engine.Order {
	id := g.nextID
	g.nextID++

	side := engine.Buy
	if g.rng.Intn(2) == 1 {
		side = engine.Sell
	}

	qty := int64(1 + g.rng.Intn(100))
	return engine.Order{ID: id, Side: side, Price: g.nextPrice(side), Qty: qty}
}

// nextPrice draws a single price tick, reused by both nextOrder (for a
// fresh order) and the replace path (which needs a new price for an
// existing id without minting a new one).
func (g *generator) nextPrice(side engine.Side) int32 {
	mid := g.minTick + (g.maxTick-g.minTick)/2
	spread := (g.maxTick - g.minTick) / 4
	if spread < 1 {
		spread = 1
	}

	var price int32
	if g.rng.Intn(100) < g.crossPct {
		price = mid + int32(g.rng.Intn(3)-1)
	} else if side == engine.Buy {
		price = mid - int32(g.rng.Intn(int(spread)+1))
	} else {
		price = mid + int32(g.rng.Intn(int(spread)+1))
	}
	if price < g.minTick {
		price = g.minTick
	}
	if price > g.maxTick {
		price = g.maxTick
	}
	return price
}
