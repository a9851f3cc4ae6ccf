package memutils

import "math"

// Statistics is a basic summary of device memory owned by an allocator
type Statistics struct {
	// AllocationCount is the number of device memory allocations
	AllocationCount int
	// RegionCount is the number of resources bound into those allocations
	RegionCount int
	// AllocationBytes is the total size of all device memory allocations
	AllocationBytes int
	// RegionBytes is the number of bytes occupied by bound resources, including alignment padding
	RegionBytes int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.RegionCount = 0
	s.AllocationBytes = 0
	s.RegionBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.AllocationCount += other.AllocationCount
	s.RegionCount += other.RegionCount
	s.AllocationBytes += other.AllocationBytes
	s.RegionBytes += other.RegionBytes
}

// DetailedStatistics extends Statistics with free space and size extremes, which are
// useful for judging fragmentation
type DetailedStatistics struct {
	Statistics
	DedicatedAllocationCount int
	FreeRegionCount          int
	RegionSizeMin            int
	RegionSizeMax            int
	FreeRegionSizeMin        int
	FreeRegionSizeMax        int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.DedicatedAllocationCount = 0
	s.FreeRegionCount = 0
	s.RegionSizeMin = math.MaxInt
	s.RegionSizeMax = 0
	s.FreeRegionSizeMin = math.MaxInt
	s.FreeRegionSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(size int, dedicated bool) {
	s.AllocationCount++
	s.AllocationBytes += size

	if dedicated {
		s.DedicatedAllocationCount++
	}
}

func (s *DetailedStatistics) AddFreeRegion(size int) {
	s.FreeRegionCount++

	if size < s.FreeRegionSizeMin {
		s.FreeRegionSizeMin = size
	}

	if size > s.FreeRegionSizeMax {
		s.FreeRegionSizeMax = size
	}
}

func (s *DetailedStatistics) AddRegion(size int) {
	s.RegionCount++
	s.RegionBytes += size

	if size < s.RegionSizeMin {
		s.RegionSizeMin = size
	}

	if size > s.RegionSizeMax {
		s.RegionSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.DedicatedAllocationCount += other.DedicatedAllocationCount
	s.FreeRegionCount += other.FreeRegionCount

	if other.FreeRegionSizeMin < s.FreeRegionSizeMin {
		s.FreeRegionSizeMin = other.FreeRegionSizeMin
	}

	if other.FreeRegionSizeMax > s.FreeRegionSizeMax {
		s.FreeRegionSizeMax = other.FreeRegionSizeMax
	}

	if other.RegionSizeMin < s.RegionSizeMin {
		s.RegionSizeMin = other.RegionSizeMin
	}

	if other.RegionSizeMax > s.RegionSizeMax {
		s.RegionSizeMax = other.RegionSizeMax
	}
}

// FreeBytes is the number of bytes in device memory allocations not occupied by resources
func (s *Statistics) FreeBytes() int {
	return s.AllocationBytes - s.RegionBytes
}
