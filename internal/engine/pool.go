package engine

// nodeHandle is a stable reference to an orderNode: a slab index and an
// offset within that slab, packed into one int32 as
// slabIndex*slabSize + offset. Unlike a raw
// pointer, a handle stays valid across slab-slice growth because slabs
// themselves are never resized or moved once allocated; only the outer
// slice of slab pointers grows.
type nodeHandle int32

const nilHandle nodeHandle = -1

// orderNode is the resting-order record. prev/next are handles into the
// same pool, forming the intrusive doubly-linked FIFO of a price level;
// the node itself does not know which level it belongs to, matching the
// spec's ownership split (pool owns storage, level owns the link, index
// owns only a lookup handle).
type orderNode struct {
	id    uint64
	side  Side
	price int32
	qty   int64
	prev  nodeHandle
	next  nodeHandle
}

// nodePool is a freelist-backed allocator over fixed-size slabs. Address
// stability is realized here as handle stability: a slab, once appended,
// is never reallocated, so a handle into it never dangles across growth
// of the outer slab list.
type nodePool struct {
	slabs    [][]orderNode
	slabSize int32
	free     []nodeHandle // LIFO freelist for cache locality on reuse
}

const defaultSlabSize = 4096

func newNodePool(expectedOrders int) *nodePool {
	p := &nodePool{slabSize: defaultSlabSize}
	if expectedOrders <= 0 {
		expectedOrders = int(defaultSlabSize)
	}
	slabs := (expectedOrders + int(p.slabSize) - 1) / int(p.slabSize)
	if slabs < 1 {
		slabs = 1
	}
	for i := 0; i < slabs; i++ {
		p.growSlab()
	}
	return p
}

func (p *nodePool) growSlab() {
	slabIdx := int32(len(p.slabs))
	slab := make([]orderNode, p.slabSize)
	p.slabs = append(p.slabs, slab)

	base := slabIdx * p.slabSize
	// Push in descending order so the freelist hands out ascending handles
	// first; purely cosmetic (keeps early allocations low-numbered) but
	// costs nothing.
	for i := p.slabSize - 1; i >= 0; i-- {
		p.free = append(p.free, nodeHandle(base+i))
	}
}

// alloc returns a node handle initialised with order and null links. Never
// fails: the pool grows by one slab when the freelist is exhausted.
func (p *nodePool) alloc(order Order) nodeHandle {
	if len(p.free) == 0 {
		p.growSlab()
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	n := p.get(h)
	n.id = order.ID
	n.side = order.Side
	n.price = order.Price
	n.qty = order.Qty
	n.prev = nilHandle
	n.next = nilHandle
	return h
}

// release returns a node to the freelist. The caller must have already
// detached it from any level.
func (p *nodePool) release(h nodeHandle) {
	n := p.get(h)
	n.prev = nilHandle
	n.next = nilHandle
	p.free = append(p.free, h)
}

func (p *nodePool) get(h nodeHandle) *orderNode {
	slabIdx := int32(h) / p.slabSize
	offset := int32(h) % p.slabSize
	return &p.slabs[slabIdx][offset]
}
