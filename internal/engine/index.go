package engine

// idRef is what the index stores for a resting order: enough to locate
// its node without touching the order's payload.
type idRef struct {
	side    Side
	price   int32
	node    nodeHandle
	present bool
}

// idIndex maps an order id to its idRef in O(1) average. It is backed by a
// direct-addressed slice sized from the max-order-id construction hint,
// the dense, allocation-free form the spec calls out as preferable when
// ids are dense and the maximum is known, with a map fallback for ids
// that fall outside the preallocated range, so the index never refuses an
// id regardless of how the hint undershoots reality.
type idIndex struct {
	direct   []idRef
	overflow map[uint64]idRef
	size     int
}

func newIDIndex(maxOrderID uint64) *idIndex {
	capacity := maxOrderID + 1
	const overflowThreshold = 1 << 22 // ~4M slots (16 bytes/slot) before falling back to a map
	if capacity > overflowThreshold {
		capacity = overflowThreshold
	}
	return &idIndex{
		direct:   make([]idRef, capacity),
		overflow: make(map[uint64]idRef),
	}
}

func (x *idIndex) lookup(id uint64) (idRef, bool) {
	if id < uint64(len(x.direct)) {
		ref := x.direct[id]
		return ref, ref.present
	}
	ref, ok := x.overflow[id]
	return ref, ok
}

// insert fails (returns false) if id is already present.
func (x *idIndex) insert(id uint64, ref idRef) bool {
	if _, ok := x.lookup(id); ok {
		return false
	}
	ref.present = true
	if id < uint64(len(x.direct)) {
		x.direct[id] = ref
	} else {
		x.overflow[id] = ref
	}
	x.size++
	return true
}

// remove fails (returns false) if id is absent.
func (x *idIndex) remove(id uint64) bool {
	if id < uint64(len(x.direct)) {
		if !x.direct[id].present {
			return false
		}
		x.direct[id] = idRef{}
		x.size--
		return true
	}
	if _, ok := x.overflow[id]; !ok {
		return false
	}
	delete(x.overflow, id)
	x.size--
	return true
}
