package memory

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/fna3d/memutils"
)

type validationSpan struct {
	offset int
	size   int
	free   bool
}

// Validate verifies the sub-allocator's bookkeeping: every allocation is exactly covered by
// non-overlapping regions, adjacent free regions have been merged, and the sorted index
// holds exactly the free regions of available allocations in descending size order
func (s *SubAllocator) Validate() error {
	indexedCount := 0

	for allocIndex, alloc := range s.allocations {
		if alloc == nil {
			continue
		}

		if alloc.index != allocIndex {
			return errors.Newf("allocation at slot %d believes it is at slot %d", allocIndex, alloc.index)
		}

		spans := make([]validationSpan, 0, len(alloc.freeRegions)+len(alloc.usedRegions))
		usedBytes := 0

		for i, region := range alloc.freeRegions {
			if region.allocationIndex != i || region.allocation != allocIndex || region.subAllocator != s.index {
				return errors.Newf("free region at offset %d of allocation %d has stale indices", region.offset, allocIndex)
			}

			if alloc.available {
				if region.sortedIndex < 0 || region.sortedIndex >= len(s.sortedFreeRegions) || s.sortedFreeRegions[region.sortedIndex] != region {
					return errors.Newf("free region at offset %d of available allocation %d is missing from the sorted index", region.offset, allocIndex)
				}
				indexedCount++
			} else if region.sortedIndex >= 0 {
				return errors.Newf("free region at offset %d of unavailable allocation %d is in the sorted index", region.offset, allocIndex)
			}

			spans = append(spans, validationSpan{offset: region.offset, size: region.size, free: true})
		}

		for i, region := range alloc.usedRegions {
			if region.allocationIndex != i || region.allocation != allocIndex || region.subAllocator != s.index {
				return errors.Newf("used region at offset %d of allocation %d has stale indices", region.offset, allocIndex)
			}

			if region.resourceOffset < region.offset || region.resourceOffset+region.requiredSize > region.End() {
				return errors.Newf("used region at offset %d of allocation %d does not contain its resource", region.offset, allocIndex)
			}

			if memutils.AlignUp(region.resourceOffset, region.alignment) != region.resourceOffset {
				return errors.Newf("used region at offset %d of allocation %d has misaligned resource offset %d", region.offset, allocIndex, region.resourceOffset)
			}

			usedBytes += region.size
			spans = append(spans, validationSpan{offset: region.offset, size: region.size})
		}

		if usedBytes != alloc.usedBytes {
			return errors.Newf("allocation %d tracks %d used bytes but its regions hold %d", allocIndex, alloc.usedBytes, usedBytes)
		}

		if alloc.dedicated && alloc.available {
			return errors.Newf("dedicated allocation %d is available for sub-allocation", allocIndex)
		}

		sort.Slice(spans, func(i, j int) bool {
			return spans[i].offset < spans[j].offset
		})

		cursor := 0
		for i, span := range spans {
			if span.size <= 0 {
				return errors.Newf("allocation %d has an empty region at offset %d", allocIndex, span.offset)
			}

			if span.offset != cursor {
				return errors.Newf("allocation %d has a gap or overlap at offset %d, expected %d", allocIndex, span.offset, cursor)
			}

			if i > 0 && span.free && spans[i-1].free {
				return errors.Newf("allocation %d has unmerged adjacent free regions at offset %d", allocIndex, span.offset)
			}

			cursor += span.size
		}

		if cursor != alloc.size {
			return errors.Newf("allocation %d has regions covering %d bytes but is %d bytes", allocIndex, cursor, alloc.size)
		}
	}

	if indexedCount != len(s.sortedFreeRegions) {
		return errors.Newf("sorted index holds %d regions but available allocations have %d free regions", len(s.sortedFreeRegions), indexedCount)
	}

	for i := 1; i < len(s.sortedFreeRegions); i++ {
		if s.sortedFreeRegions[i-1].size < s.sortedFreeRegions[i].size {
			return errors.Newf("sorted index is out of order at position %d", i)
		}
	}

	return nil
}

// Validate verifies the bookkeeping of every sub-allocator
func (a *Allocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for i := range a.subAllocators {
		err := a.subAllocators[i].Validate()
		if err != nil {
			return errors.Wrapf(err, "sub-allocator %d", i)
		}
	}

	return nil
}
