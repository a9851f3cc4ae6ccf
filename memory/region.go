package memory

// FreeRegion is an unused span of bytes inside one Allocation
type FreeRegion struct {
	subAllocator int
	allocation   int
	offset       int
	size         int

	// position in Allocation.freeRegions
	allocationIndex int
	// position in SubAllocator.sortedFreeRegions, -1 while the allocation is unavailable
	sortedIndex int
}

func (r *FreeRegion) Offset() int { return r.offset }
func (r *FreeRegion) Size() int   { return r.size }
func (r *FreeRegion) End() int    { return r.offset + r.size }

// UsedRegion is a span of bytes inside one Allocation that a native resource is bound to. The span
// begins with any padding needed to reach the resource's alignment.
type UsedRegion struct {
	subAllocator int
	allocation   int
	offset       int
	size         int

	resourceOffset int
	resourceSize   int
	requiredSize   int
	alignment      uint

	hostVisible  bool
	deviceLocal  bool
	isBuffer     bool
	resource     any
	defragHandle any

	// position in Allocation.usedRegions
	allocationIndex int
	bound           bool
	freed           bool
	moved           bool
}

func (r *UsedRegion) Offset() int { return r.offset }
func (r *UsedRegion) Size() int   { return r.size }

// ResourceOffset is the aligned offset the resource was bound at
func (r *UsedRegion) ResourceOffset() int { return r.resourceOffset }

// ResourceSize is the size of the resource itself, which may be smaller than its memory requirements
func (r *UsedRegion) ResourceSize() int { return r.resourceSize }
func (r *UsedRegion) RequiredSize() int { return r.requiredSize }
func (r *UsedRegion) Alignment() uint   { return r.alignment }
func (r *UsedRegion) IsBuffer() bool    { return r.isBuffer }

// Resource is the native resource bound to this region
func (r *UsedRegion) Resource() any { return r.resource }

// DefragHandle is the client-visible object that owns Resource. It is passed back to the backend
// during defragmentation so the backend can repoint it.
func (r *UsedRegion) DefragHandle() any { return r.defragHandle }

// SubAllocatorIndex is the memory category this region was bound from
func (r *UsedRegion) SubAllocatorIndex() int { return r.subAllocator }

// AllocationIndex identifies the allocation within its sub-allocator. Indices of freed
// allocations are reused.
func (r *UsedRegion) AllocationIndex() int { return r.allocation }

// Moved returns true once defragmentation has relocated the resource out of this region
func (r *UsedRegion) Moved() bool { return r.moved }

func (r *UsedRegion) End() int { return r.offset + r.size }
