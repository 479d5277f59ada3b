package engine

// Engine is the matching engine orchestrator: it owns the node pool, the
// price ladder, and the id index, and exposes Submit, Cancel, and Replace.
// It is single-threaded and cooperative, per the package doc comment.
// Callers that need to serialize concurrent access must do so themselves,
// outside the engine (see internal/protocol for the service-boundary
// mutex).
type Engine struct {
	ladder *ladder
	pool   *nodePool
	index  *idIndex
	sink   TradeSink
}

// NewEngine constructs an engine over the closed tick band
// [minTick, maxTick]. expectedOrders and maxOrderID are pre-reservation
// hints for the node pool and id index respectively; neither is a hard
// cap, and exceeding either triggers on-demand growth. A nil sink is
// replaced with NopSink.
func NewEngine(minTick, maxTick int32, expectedOrders int, maxOrderID uint64, sink TradeSink) (*Engine, error) {
	if minTick > maxTick {
		return nil, ErrInvalidBand{MinTick: minTick, MaxTick: maxTick}
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		ladder: newLadder(minTick, maxTick),
		pool:   newNodePool(expectedOrders),
		index:  newIDIndex(maxOrderID),
		sink:   sink,
	}, nil
}

func opposite(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// marketable reports whether a resting level at oppTick would immediately
// cross with an incoming order of takerSide priced at takerPrice.
func marketable(takerSide Side, takerPrice, oppTick int32) bool {
	if takerSide == Buy {
		return oppTick <= takerPrice
	}
	return oppTick >= takerPrice
}

// Submit accepts an incoming order, crosses it against the opposite
// ladder from the best cursor inward, and rests any remainder on its own
// side. See spec §4.5 for the full contract.
func (e *Engine) Submit(order Order) AddResult {
	if order.Qty <= 0 {
		return Rejected
	}
	if !e.ladder.inBand(order.Price) {
		return Rejected
	}
	if _, resting := e.index.lookup(order.ID); resting {
		return Rejected
	}

	oppSide := opposite(order.Side)
	remaining := order.Qty

	for remaining > 0 && !e.ladder.empty(oppSide) {
		bestIdx := e.ladder.best(oppSide)
		bestTick := e.ladder.tick(bestIdx)
		if !marketable(order.Side, order.Price, bestTick) {
			break
		}

		level := e.ladder.level(oppSide, bestTick)
		for remaining > 0 && !level.isEmpty() {
			makerHandle := level.peekFront()
			maker := e.pool.get(makerHandle)

			fillQty := remaining
			if maker.qty < fillQty {
				fillQty = maker.qty
			}

			e.sink.OnTrade(fillQty, maker.price, order.ID, maker.id)

			remaining -= fillQty
			maker.qty -= fillQty
			level.totalQuantity -= fillQty

			if maker.qty == 0 {
				makerID := maker.id
				level.unlink(e.pool, makerHandle)
				e.pool.release(makerHandle)
				e.index.remove(makerID)
				e.sink.OnOrderClosed(makerID)
			}
		}

		if level.isEmpty() {
			e.ladder.advanceBest(oppSide)
		} else {
			// Maker still carries qty: the taker must be exhausted.
			break
		}
	}

	filled := order.Qty - remaining
	if remaining == 0 {
		return FullyMatched
	}

	h := e.pool.alloc(Order{ID: order.ID, Side: order.Side, Price: order.Price, Qty: remaining})
	restIdx := e.ladder.idx(order.Price)
	e.ladder.level(order.Side, order.Price).pushBack(e.pool, h)
	e.index.insert(order.ID, idRef{side: order.Side, price: order.Price, node: h})
	e.ladder.tightenBestOnInsert(order.Side, restIdx)

	if filled > 0 {
		return PartiallyRested
	}
	return FullyRested
}

// Cancel removes a resting order by id. Returns false if id is not
// currently resting.
func (e *Engine) Cancel(id uint64) bool {
	ref, ok := e.index.lookup(id)
	if !ok {
		return false
	}
	e.detach(ref)
	e.index.remove(id)
	return true
}

// detach unlinks a resting node from its level, adjusts totalQuantity,
// returns the node to the pool, and re-tightens the best cursor if the
// level it vacated was the current best. It does not touch the index;
// callers remove the id themselves (Cancel and the cancel half of
// Replace both do this right after detach returns).
func (e *Engine) detach(ref idRef) {
	level := e.ladder.level(ref.side, ref.price)
	level.erase(e.pool, ref.node)
	e.pool.release(ref.node)

	if level.isEmpty() && e.ladder.best(ref.side) == e.ladder.idx(ref.price) {
		e.ladder.advanceBest(ref.side)
	}
}

// Replace is equivalent to cancel(id) followed immediately by
// submit({id, sameSide, newPrice, newQty}): no trades are emitted between
// the two steps, so the replaced order can never trade against itself.
// Side cannot be changed: there is no side parameter to change it with.
// If id is not currently resting, returns {Success: false} and performs
// no submit.
func (e *Engine) Replace(id uint64, newPrice int32, newQty int64) ReplaceResult {
	ref, ok := e.index.lookup(id)
	if !ok {
		return ReplaceResult{Success: false}
	}

	e.detach(ref)
	e.index.remove(id)

	add := e.Submit(Order{ID: id, Side: ref.side, Price: newPrice, Qty: newQty})
	return ReplaceResult{Success: true, Add: add}
}

// LiveOrders returns the count of currently-resting ids.
func (e *Engine) LiveOrders() int {
	return e.index.size
}
