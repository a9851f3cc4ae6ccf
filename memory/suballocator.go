package memory

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/fna3d/memutils"
	"golang.org/x/exp/slices"
)

// SubAllocator owns every Allocation for a single memory category, along with a list of
// the free regions of its available allocations sorted by descending size
type SubAllocator struct {
	index int

	// allocations is an arena: regions refer to allocations by index, and the slots of freed
	// allocations are nil until reused
	allocations []*Allocation
	freeSlots   []int

	sortedFreeRegions  []*FreeRegion
	nextAllocationSize int
}

func (s *SubAllocator) Index() int {
	return s.index
}

// NextAllocationSize is the size that will be used for the next non-dedicated allocation
func (s *SubAllocator) NextAllocationSize() int {
	return s.nextAllocationSize
}

// AllocationCount is the number of live allocations
func (s *SubAllocator) AllocationCount() int {
	return len(s.allocations) - len(s.freeSlots)
}

// Allocation returns the live allocation at the provided index, or nil
func (s *SubAllocator) Allocation(index int) *Allocation {
	if index < 0 || index >= len(s.allocations) {
		return nil
	}
	return s.allocations[index]
}

// SortedFreeRegions returns a copy of the sub-allocator's free region index
func (s *SubAllocator) SortedFreeRegions() []*FreeRegion {
	return slices.Clone(s.sortedFreeRegions)
}

func (s *SubAllocator) largestFreeRegion() *FreeRegion {
	if len(s.sortedFreeRegions) == 0 {
		return nil
	}
	return s.sortedFreeRegions[0]
}

func (s *SubAllocator) addAllocation(alloc *Allocation) {
	if len(s.freeSlots) > 0 {
		last := len(s.freeSlots) - 1
		alloc.index = s.freeSlots[last]
		s.freeSlots = s.freeSlots[:last]
		s.allocations[alloc.index] = alloc
		return
	}

	alloc.index = len(s.allocations)
	s.allocations = append(s.allocations, alloc)
}

func (s *SubAllocator) removeAllocation(alloc *Allocation) {
	for len(alloc.freeRegions) > 0 {
		s.removeFreeRegion(alloc, alloc.freeRegions[len(alloc.freeRegions)-1])
	}

	s.allocations[alloc.index] = nil
	s.freeSlots = append(s.freeSlots, alloc.index)
}

func (s *SubAllocator) indexFreeRegion(region *FreeRegion) {
	// First entry smaller than region- equal sizes keep insertion order
	insertAt := sort.Search(len(s.sortedFreeRegions), func(i int) bool {
		return s.sortedFreeRegions[i].size < region.size
	})

	s.sortedFreeRegions = slices.Insert(s.sortedFreeRegions, insertAt, region)
	for i := insertAt; i < len(s.sortedFreeRegions); i++ {
		s.sortedFreeRegions[i].sortedIndex = i
	}
}

func (s *SubAllocator) unindexFreeRegion(region *FreeRegion) {
	if region.sortedIndex < 0 {
		return
	}

	removeAt := region.sortedIndex
	s.sortedFreeRegions = slices.Delete(s.sortedFreeRegions, removeAt, removeAt+1)
	for i := removeAt; i < len(s.sortedFreeRegions); i++ {
		s.sortedFreeRegions[i].sortedIndex = i
	}
	region.sortedIndex = -1
}

// setAvailable adds or removes the allocation's free regions from the sorted index
func (s *SubAllocator) setAvailable(alloc *Allocation, available bool) {
	if alloc.available == available {
		return
	}
	alloc.available = available

	for _, region := range alloc.freeRegions {
		if available {
			s.indexFreeRegion(region)
		} else {
			s.unindexFreeRegion(region)
		}
	}
}

func (s *SubAllocator) removeFreeRegion(alloc *Allocation, region *FreeRegion) {
	s.unindexFreeRegion(region)
	alloc.removeFreeRegion(region)
}

// insertFreeRegion returns a span of bytes to the allocation, merging it with any free
// neighbors so adjacent free spans are always a single region
func (s *SubAllocator) insertFreeRegion(alloc *Allocation, offset int, size int) {
	for _, neighbor := range alloc.freeRegions {
		if neighbor.End() == offset {
			s.removeFreeRegion(alloc, neighbor)
			s.insertFreeRegion(alloc, neighbor.offset, neighbor.size+size)
			return
		}

		if offset+size == neighbor.offset {
			s.removeFreeRegion(alloc, neighbor)
			s.insertFreeRegion(alloc, offset, size+neighbor.size)
			return
		}
	}

	region := &FreeRegion{
		subAllocator: s.index,
		allocation:   alloc.index,
		offset:       offset,
		size:         size,
		sortedIndex:  -1,
	}
	alloc.addFreeRegion(region)

	if alloc.available {
		s.indexFreeRegion(region)
	}
}

// carve splits a used region off the front of a free region. The returned region covers any
// alignment padding plus requiredSize bytes.
func (s *SubAllocator) carve(alloc *Allocation, region *FreeRegion, info *BindInfo) *UsedRegion {
	memutils.DebugCheckPow2(info.RequiredAlignment, "RequiredAlignment")

	alignedOffset := memutils.AlignUp(region.offset, info.RequiredAlignment)
	usedEnd := alignedOffset + info.RequiredSize
	remainder := region.End() - usedEnd

	used := &UsedRegion{
		subAllocator:   s.index,
		allocation:     alloc.index,
		offset:         region.offset,
		size:           usedEnd - region.offset,
		resourceOffset: alignedOffset,
		resourceSize:   info.ResourceSize,
		requiredSize:   info.RequiredSize,
		alignment:      info.RequiredAlignment,
		hostVisible:    info.HostVisible,
		deviceLocal:    info.DeviceLocal,
		isBuffer:       !info.IsImage,
		resource:       info.Resource,
		defragHandle:   info.DefragHandle,
	}

	s.removeFreeRegion(alloc, region)
	alloc.addUsedRegion(used)

	if remainder > 0 {
		s.insertFreeRegion(alloc, usedEnd, remainder)
	}

	return used
}

func (s *SubAllocator) fits(region *FreeRegion, info *BindInfo) bool {
	alignedOffset := memutils.AlignUp(region.offset, info.RequiredAlignment)
	return alignedOffset+info.RequiredSize <= region.End()
}

// releaseUsedRegion returns a used region's bytes to its allocation
func (s *SubAllocator) releaseUsedRegion(region *UsedRegion) (*Allocation, error) {
	alloc := s.Allocation(region.allocation)
	if alloc == nil {
		return nil, errors.Newf("used region at offset %d refers to missing allocation %d in sub-allocator %d", region.offset, region.allocation, s.index)
	}

	if region.allocationIndex >= len(alloc.usedRegions) || alloc.usedRegions[region.allocationIndex] != region {
		return nil, errors.Newf("used region at offset %d is not part of allocation %d in sub-allocator %d", region.offset, region.allocation, s.index)
	}

	alloc.removeUsedRegion(region)
	s.insertFreeRegion(alloc, region.offset, region.size)
	region.freed = true

	return alloc, nil
}

// nextSize picks the size of a new non-dedicated allocation. It returns true if the size came
// from the hint, in which case the hint should grow once the allocation succeeds.
func (s *SubAllocator) nextSize(requiredSize int, increment int) (int, bool) {
	if requiredSize > s.nextAllocationSize {
		return memutils.RoundUpToMultiple(requiredSize, increment), false
	}

	return s.nextAllocationSize, true
}

func (s *SubAllocator) growNextSize(maxSize int) {
	next := s.nextAllocationSize * 2
	if next > maxSize {
		next = maxSize
	}
	if next > s.nextAllocationSize {
		s.nextAllocationSize = next
	}
}
