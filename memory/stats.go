package memory

import (
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/fna3d/memutils"
)

func (s *SubAllocator) addDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, alloc := range s.allocations {
		if alloc == nil {
			continue
		}

		stats.AddAllocation(alloc.size, alloc.dedicated)
		for _, region := range alloc.usedRegions {
			stats.AddRegion(region.size)
		}
		for _, region := range alloc.freeRegions {
			stats.AddFreeRegion(region.size)
		}
	}
}

// CalculateStatistics populates one set of statistics per sub-allocator plus a total across all of them.
// perSubAllocator may be nil. If it is not, it must have at least SubAllocatorCount entries.
func (a *Allocator) CalculateStatistics(total *memutils.DetailedStatistics, perSubAllocator []memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	total.Clear()

	for i := range a.subAllocators {
		var stats memutils.DetailedStatistics
		stats.Clear()
		a.subAllocators[i].addDetailedStatistics(&stats)

		if perSubAllocator != nil {
			perSubAllocator[i] = stats
		}
		total.AddDetailedStatistics(&stats)
	}
}

func printStatistics(obj *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	obj.Name("AllocationCount").Int(stats.AllocationCount)
	obj.Name("DedicatedAllocationCount").Int(stats.DedicatedAllocationCount)
	obj.Name("AllocationBytes").Int(stats.AllocationBytes)
	obj.Name("RegionCount").Int(stats.RegionCount)
	obj.Name("RegionBytes").Int(stats.RegionBytes)
	obj.Name("FreeRegionCount").Int(stats.FreeRegionCount)
	obj.Name("FreeBytes").Int(stats.FreeBytes())

	if stats.RegionCount > 0 {
		obj.Name("RegionSizeMin").Int(stats.RegionSizeMin)
		obj.Name("RegionSizeMax").Int(stats.RegionSizeMax)
	}
	if stats.FreeRegionCount > 0 {
		obj.Name("FreeRegionSizeMin").Int(stats.FreeRegionSizeMin)
		obj.Name("FreeRegionSizeMax").Int(stats.FreeRegionSizeMax)
	}
}

func (a *Allocation) printDetailedMap(obj *jwriter.ObjectState) {
	obj.Name("Size").Int(a.size)
	obj.Name("Dedicated").Bool(a.dedicated)
	obj.Name("Available").Bool(a.available)
	obj.Name("Mapped").Bool(a.mapped != nil)

	freeArray := obj.Name("FreeRegions").Array()
	for _, region := range a.freeRegions {
		regionObj := freeArray.Object()
		regionObj.Name("Offset").Int(region.offset)
		regionObj.Name("Size").Int(region.size)
		regionObj.End()
	}
	freeArray.End()

	usedArray := obj.Name("UsedRegions").Array()
	for _, region := range a.usedRegions {
		regionObj := usedArray.Object()
		regionObj.Name("Offset").Int(region.offset)
		regionObj.Name("Size").Int(region.size)
		regionObj.Name("ResourceOffset").Int(region.resourceOffset)
		regionObj.Name("ResourceSize").Int(region.resourceSize)
		regionObj.Name("Alignment").Int(int(region.alignment))
		if region.isBuffer {
			regionObj.Name("Type").String("Buffer")
		} else {
			regionObj.Name("Type").String("Image")
		}
		if region.moved {
			regionObj.Name("Moved").Bool(true)
		}
		regionObj.End()
	}
	usedArray.End()
}

// BuildStatsString returns a JSON document describing the allocator's memory. If detailed is true,
// every allocation and region is listed.
func (a *Allocator) BuildStatsString(detailed bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	writer := jwriter.NewWriter()
	root := writer.Object()

	var total memutils.DetailedStatistics
	total.Clear()

	subArray := root.Name("SubAllocators").Array()
	for i := range a.subAllocators {
		sub := &a.subAllocators[i]

		var stats memutils.DetailedStatistics
		stats.Clear()
		sub.addDetailedStatistics(&stats)
		total.AddDetailedStatistics(&stats)

		subObj := subArray.Object()
		subObj.Name("Index").Int(sub.index)
		subObj.Name("NextAllocationSize").Int(sub.nextAllocationSize)

		statsObj := subObj.Name("Stats").Object()
		printStatistics(&statsObj, &stats)
		statsObj.End()

		if detailed {
			allocObj := subObj.Name("Allocations").Object()
			for _, alloc := range sub.allocations {
				if alloc == nil {
					continue
				}

				obj := allocObj.Name(strconv.Itoa(alloc.index)).Object()
				alloc.printDetailedMap(&obj)
				obj.End()
			}
			allocObj.End()
		}

		subObj.End()
	}
	subArray.End()

	totalObj := root.Name("Total").Object()
	printStatistics(&totalObj, &total)
	totalObj.End()

	defragObj := root.Name("Defragmentation").Object()
	defragObj.Name("BytesMoved").Int(a.defragStats.BytesMoved)
	defragObj.Name("BytesFreed").Int(a.defragStats.BytesFreed)
	defragObj.Name("RegionsMoved").Int(a.defragStats.RegionsMoved)
	defragObj.Name("AllocationsFreed").Int(a.defragStats.AllocationsFreed)
	defragObj.Name("PassesCompleted").Int(a.defragStats.PassesCompleted)
	defragObj.Name("PassesFailed").Int(a.defragStats.PassesFailed)
	defragObj.Name("PendingDestroy").Int(len(a.regionsToDestroy))
	defragObj.End()

	root.End()

	return string(writer.Bytes())
}
