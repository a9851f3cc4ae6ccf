package memory

import (
	"sync"
	"unsafe"
)

// Allocation is one block of device memory, subdivided into free and used regions
type Allocation struct {
	index  int
	memory DeviceMemory
	size   int
	mapped unsafe.Pointer

	freeRegions []*FreeRegion
	usedRegions []*UsedRegion
	usedBytes   int

	// dedicated allocations hold exactly one resource and are never subdivided
	dedicated bool
	// unavailable allocations are not searched for free space
	available bool

	mapLock sync.Mutex
}

func (a *Allocation) Memory() DeviceMemory {
	return a.memory
}

func (a *Allocation) Size() int {
	return a.size
}

func (a *Allocation) Dedicated() bool {
	return a.dedicated
}

func (a *Allocation) Available() bool {
	return a.available
}

func (a *Allocation) FreeRegionCount() int {
	return len(a.freeRegions)
}

func (a *Allocation) UsedRegionCount() int {
	return len(a.usedRegions)
}

// MappedPointer is the persistent host mapping of the allocation, or nil if it is not host visible
func (a *Allocation) MappedPointer() unsafe.Pointer {
	return a.mapped
}

func (a *Allocation) freeBytes() int {
	return a.size - a.usedBytes
}

func (a *Allocation) addUsedRegion(region *UsedRegion) {
	region.allocationIndex = len(a.usedRegions)
	a.usedRegions = append(a.usedRegions, region)
	a.usedBytes += region.size
}

func (a *Allocation) removeUsedRegion(region *UsedRegion) {
	last := len(a.usedRegions) - 1
	if region.allocationIndex != last {
		moved := a.usedRegions[last]
		a.usedRegions[region.allocationIndex] = moved
		moved.allocationIndex = region.allocationIndex
	}
	a.usedRegions[last] = nil
	a.usedRegions = a.usedRegions[:last]
	a.usedBytes -= region.size
}

func (a *Allocation) addFreeRegion(region *FreeRegion) {
	region.allocationIndex = len(a.freeRegions)
	a.freeRegions = append(a.freeRegions, region)
}

func (a *Allocation) removeFreeRegion(region *FreeRegion) {
	last := len(a.freeRegions) - 1
	if region.allocationIndex != last {
		moved := a.freeRegions[last]
		a.freeRegions[region.allocationIndex] = moved
		moved.allocationIndex = region.allocationIndex
	}
	a.freeRegions[last] = nil
	a.freeRegions = a.freeRegions[:last]
}
