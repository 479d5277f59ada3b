package engine

import "testing"

func TestNodePoolAllocReuseIsLIFO(t *testing.T) {
	p := newNodePool(4)

	a := p.alloc(Order{ID: 1, Qty: 10})
	b := p.alloc(Order{ID: 2, Qty: 20})

	p.release(b)
	p.release(a)

	// LIFO: the most recently freed node (a) comes back first.
	reused := p.alloc(Order{ID: 3, Qty: 30})
	if reused != a {
		t.Fatalf("expected LIFO reuse of handle %d, got %d", a, reused)
	}
}

func TestNodePoolGrowsPastInitialSlab(t *testing.T) {
	p := &nodePool{slabSize: 4} // force a small slab so growth is exercised in-test
	p.growSlab()

	handles := make([]nodeHandle, 0, 10)
	for i := 0; i < 10; i++ {
		handles = append(handles, p.alloc(Order{ID: uint64(i), Qty: int64(i + 1)}))
	}

	if len(p.slabs) < 3 {
		t.Fatalf("expected at least 3 slabs after 10 allocations of slab size 4, got %d", len(p.slabs))
	}

	for i, h := range handles {
		n := p.get(h)
		if n.qty != int64(i+1) {
			t.Fatalf("handle %d: expected qty %d, got %d", h, i+1, n.qty)
		}
	}
}

func TestNodePoolHandleStableAcrossGrowth(t *testing.T) {
	p := &nodePool{slabSize: 2}
	p.growSlab()

	first := p.alloc(Order{ID: 42, Qty: 7})
	for i := 0; i < 20; i++ {
		p.alloc(Order{ID: uint64(i), Qty: 1})
	}

	n := p.get(first)
	if n.id != 42 || n.qty != 7 {
		t.Fatalf("handle %d no longer refers to the original node after growth: got id=%d qty=%d", first, n.id, n.qty)
	}
}
