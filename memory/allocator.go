package memory

import (
	"context"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/fna3d/internal/utils"
	"github.com/vkngwrapper/fna3d/memutils"
	"github.com/vkngwrapper/fna3d/memutils/defrag"
	"golang.org/x/exp/slog"
)

// BindInfo describes a native resource that needs device memory
type BindInfo struct {
	SubAllocatorIndex int
	// RequiredSize and RequiredAlignment are the resource's memory requirements
	RequiredSize      int
	RequiredAlignment uint
	HostVisible       bool
	DeviceLocal       bool
	// ForceDedicated gives the resource its own allocation of exactly RequiredSize bytes
	ForceDedicated bool

	// ResourceSize is the size of the resource itself
	ResourceSize int
	IsImage      bool
	// Resource is the native buffer or image that will be bound
	Resource any
	// DefragHandle is the client-visible object that owns Resource, used to repoint it
	// during defragmentation
	DefragHandle any
}

type allocationRef struct {
	subAllocator int
	allocation   int
}

// Allocator sub-allocates device memory for native resources and incrementally defragments it
type Allocator struct {
	logger          *slog.Logger
	driver          Driver
	createFlags     CreateFlags
	memoryCallbacks memoryCallbacks

	startingAllocationSize int
	allocationIncrement    int
	maxAllocationSize      int

	mutex         utils.OptionalMutex
	subAllocators []SubAllocator

	regionsByResource *swiss.Map[any, *UsedRegion]
	resourceFreed     bool

	defragMutex      sync.Mutex
	scheduler        defrag.Scheduler
	pass             defrag.PassContext
	defragTarget     *allocationRef
	regionsToDestroy []*UsedRegion
	defragStats      defrag.DefragmentationStats

	// unconfirmedRegions were relocated by passes whose EndDefragCommands failed
	unconfirmedRegions []*UsedRegion
}

func (a *Allocator) subAllocator(index int) (*SubAllocator, error) {
	if index < 0 || index >= len(a.subAllocators) {
		return nil, errors.Newf("sub-allocator index %d out of range, there are %d sub-allocators", index, len(a.subAllocators))
	}

	return &a.subAllocators[index], nil
}

// SubAllocatorCount returns the number of memory categories this allocator manages
func (a *Allocator) SubAllocatorCount() int {
	return len(a.subAllocators)
}

// BindResource finds or allocates device memory for a native resource and binds the resource to it.
//
// Unless info.ForceDedicated is set, the largest free region of the sub-allocator is tried first. If it
// cannot hold the resource, a new allocation is made. Errors caused by failing to allocate
// device memory are marked with ErrOutOfDeviceMemory and errors from the backend's bind call are marked
// with ErrBindFailed. No memory stays reserved for the resource when an error is returned.
func (a *Allocator) BindResource(info BindInfo) (*UsedRegion, common.VkResult, error) {
	a.logger.Debug("Allocator::BindResource")

	if info.RequiredSize <= 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to bind a resource with required size %d", info.RequiredSize)
	}
	if info.RequiredAlignment == 0 {
		info.RequiredAlignment = 1
	}
	err := memutils.CheckPow2(info.RequiredAlignment, "RequiredAlignment")
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	a.mutex.Lock()
	region, alloc, res, err := a.findOrAllocate(&info)
	a.mutex.Unlock()
	if err != nil {
		return nil, res, err
	}

	if info.IsImage {
		res, err = a.driver.BindImageMemory(info.Resource, alloc.memory, region.resourceOffset)
	} else {
		res, err = a.driver.BindBufferMemory(info.Resource, alloc.memory, region.resourceOffset)
	}

	if err != nil {
		a.mutex.Lock()
		defer a.mutex.Unlock()

		sub := &a.subAllocators[info.SubAllocatorIndex]
		_, releaseErr := sub.releaseUsedRegion(region)
		if releaseErr != nil {
			panic(errors.CombineErrors(err, releaseErr))
		}
		a.resourceFreed = true
		memutils.DebugValidate(sub)

		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to bind resource memory",
			slog.Int("SubAllocator", info.SubAllocatorIndex),
			slog.Int("Offset", region.resourceOffset),
			slog.Any("Error", err),
		)

		if res == core1_0.VKSuccess {
			res = core1_0.VKErrorUnknown
		}
		return nil, res, errors.Mark(errors.Wrap(err, "failed to bind resource memory"), ErrBindFailed)
	}

	a.mutex.Lock()
	region.bound = true
	if info.Resource != nil && !region.freed {
		a.regionsByResource.Put(info.Resource, region)
	}
	a.mutex.Unlock()

	return region, core1_0.VKSuccess, nil
}

func (a *Allocator) findOrAllocate(info *BindInfo) (*UsedRegion, *Allocation, common.VkResult, error) {
	sub, err := a.subAllocator(info.SubAllocatorIndex)
	if err != nil {
		return nil, nil, core1_0.VKErrorUnknown, err
	}

	if !info.ForceDedicated {
		largest := sub.largestFreeRegion()
		if largest != nil && sub.fits(largest, info) {
			alloc := sub.allocations[largest.allocation]
			region := sub.carve(alloc, largest, info)
			memutils.DebugValidate(sub)
			return region, alloc, core1_0.VKSuccess, nil
		}
	}

	size := info.RequiredSize
	fromHint := false
	if !info.ForceDedicated {
		size, fromHint = sub.nextSize(info.RequiredSize, a.allocationIncrement)
	}

	alloc, res, err := a.allocate(sub, info, size)
	if err != nil {
		return nil, nil, res, err
	}

	if fromHint {
		sub.growNextSize(a.maxAllocationSize)
	}

	region := sub.carve(alloc, alloc.freeRegions[0], info)
	memutils.DebugValidate(sub)
	return region, alloc, core1_0.VKSuccess, nil
}

func (a *Allocator) allocate(sub *SubAllocator, info *BindInfo, size int) (*Allocation, common.VkResult, error) {
	allocInfo := AllocateInfo{
		SubAllocatorIndex: sub.index,
		Size:              size,
		HostVisible:       info.HostVisible,
		DeviceLocal:       info.DeviceLocal,
	}
	if info.ForceDedicated {
		allocInfo.DedicatedResource = info.Resource
		allocInfo.DedicatedIsImage = info.IsImage
	}

	memory, mapped, res, err := a.driver.AllocDeviceMemory(allocInfo)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to allocate device memory",
			slog.Int("SubAllocator", sub.index),
			slog.Int("Size", size),
			slog.Bool("Dedicated", info.ForceDedicated),
			slog.Any("Error", err),
		)

		if res == core1_0.VKSuccess {
			res = core1_0.VKErrorOutOfDeviceMemory
		}
		return nil, res, errors.Mark(errors.Wrapf(err, "failed to allocate %d bytes of device memory", size), ErrOutOfDeviceMemory)
	}

	alloc := &Allocation{
		memory:    memory,
		size:      size,
		mapped:    mapped,
		dedicated: info.ForceDedicated,
	}
	sub.addAllocation(alloc)
	sub.insertFreeRegion(alloc, 0, size)
	if !alloc.dedicated {
		sub.setAvailable(alloc, true)
	}

	a.memoryCallbacks.Allocate(sub.index, memory, size)

	return alloc, core1_0.VKSuccess, nil
}

// RemoveUsedRegion returns a region's memory to its allocation. The caller is responsible for
// destroying the native resource first. Allocations emptied this way are freed by the next sweep.
func (a *Allocator) RemoveUsedRegion(region *UsedRegion) error {
	a.logger.Debug("Allocator::RemoveUsedRegion")

	if region == nil {
		return errors.New("attempted to remove a nil region")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.removeUsedRegionWithLock(region)
}

func (a *Allocator) removeUsedRegionWithLock(region *UsedRegion) error {
	if region.freed {
		return errors.Newf("attempted to remove region at offset %d of allocation %d twice", region.offset, region.allocation)
	}

	sub, err := a.subAllocator(region.subAllocator)
	if err != nil {
		return err
	}

	_, err = sub.releaseUsedRegion(region)
	if err != nil {
		return err
	}

	if region.resource != nil {
		current, ok := a.regionsByResource.Get(region.resource)
		if ok && current == region {
			a.regionsByResource.Delete(region.resource)
		}
	}

	a.resourceFreed = true
	a.scheduler.RequestDefrag()
	memutils.DebugValidate(sub)

	return nil
}

// RegionForResource returns the region a native resource is currently bound to
func (a *Allocator) RegionForResource(resource any) (*UsedRegion, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.regionsByResource.Get(resource)
}

// SweepEmptyAllocations frees the device memory of every allocation without used regions. It does nothing
// unless a region has been removed since the last sweep. It returns the number of allocations freed.
func (a *Allocator) SweepEmptyAllocations() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.resourceFreed {
		return 0
	}
	a.resourceFreed = false

	freed := 0
	for subIndex := range a.subAllocators {
		sub := &a.subAllocators[subIndex]

		for allocIndex, alloc := range sub.allocations {
			if alloc == nil || len(alloc.usedRegions) > 0 {
				continue
			}

			if a.defragTarget != nil && a.defragTarget.subAllocator == subIndex && a.defragTarget.allocation == allocIndex {
				continue
			}

			if !alloc.available && !alloc.dedicated {
				a.defragStats.BytesFreed += alloc.size
				a.defragStats.AllocationsFreed++
			}

			a.freeAllocation(sub, alloc)
			freed++
		}

		memutils.DebugValidate(sub)
	}

	if freed > 0 {
		a.logger.Debug("Allocator::SweepEmptyAllocations", slog.Int("Freed", freed))
	}

	return freed
}

func (a *Allocator) freeAllocation(sub *SubAllocator, alloc *Allocation) {
	sub.removeAllocation(alloc)
	a.driver.FreeDeviceMemory(alloc.memory, alloc.size)
	a.memoryCallbacks.Free(sub.index, alloc.memory, alloc.size)
}

// Map locks the region's allocation for host access and returns a pointer to the start of the
// bound resource. The allocation must be host visible. Every successful Map must be followed by Unmap.
func (a *Allocator) Map(region *UsedRegion) (unsafe.Pointer, common.VkResult, error) {
	a.mutex.Lock()
	alloc, err := a.allocationForRegion(region)
	a.mutex.Unlock()
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	if alloc.mapped == nil {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("allocation %d of sub-allocator %d is not host visible", alloc.index, region.subAllocator)
	}

	alloc.mapLock.Lock()

	// Defragmentation holds the map lock while it relocates a region
	a.mutex.Lock()
	_, err = a.allocationForRegion(region)
	a.mutex.Unlock()
	if err != nil {
		alloc.mapLock.Unlock()
		return nil, core1_0.VKErrorUnknown, err
	}

	return unsafe.Add(alloc.mapped, region.resourceOffset), core1_0.VKSuccess, nil
}

// Unmap releases the lock taken by Map
func (a *Allocator) Unmap(region *UsedRegion) error {
	a.mutex.Lock()
	alloc, err := a.allocationForRegion(region)
	a.mutex.Unlock()
	if err != nil {
		return err
	}

	alloc.mapLock.Unlock()
	return nil
}

func (a *Allocator) allocationForRegion(region *UsedRegion) (*Allocation, error) {
	if region == nil || region.freed {
		return nil, errors.New("region has already been removed")
	}

	if region.moved {
		return nil, errors.Mark(errors.Newf("region at offset %d of allocation %d has been relocated", region.offset, region.allocation), ErrRegionRelocated)
	}

	sub, err := a.subAllocator(region.subAllocator)
	if err != nil {
		return nil, err
	}

	alloc := sub.Allocation(region.allocation)
	if alloc == nil {
		return nil, errors.Newf("region refers to missing allocation %d", region.allocation)
	}

	return alloc, nil
}

// Tick is the allocator's per-frame maintenance: it sweeps empty allocations and, once enough frames
// have passed since the last free, relocates the contents of one fragmented allocation.
func (a *Allocator) Tick() (common.VkResult, error) {
	a.SweepEmptyAllocations()

	if a.createFlags&CreateDisableDefragmentation != 0 {
		return core1_0.VKSuccess, nil
	}

	a.mutex.Lock()
	due := a.scheduler.Tick()
	a.mutex.Unlock()

	if !due {
		return core1_0.VKSuccess, nil
	}

	_, res, err := a.Defragment()
	if err == nil {
		// EndDefragCommands has already waited on the copies
		a.DestroyDefragmentedRegions()
	}

	return res, err
}

// Destroy frees all device memory owned by this allocator. The device must be idle. Regions that were
// never removed are logged.
func (a *Allocator) Destroy() {
	a.logger.Debug("Allocator::Destroy")

	a.mutex.Lock()
	a.regionsToDestroy = append(a.regionsToDestroy, a.unconfirmedRegions...)
	a.unconfirmedRegions = nil
	a.mutex.Unlock()

	a.DestroyDefragmentedRegions()

	a.mutex.Lock()
	defer a.mutex.Unlock()

	for subIndex := range a.subAllocators {
		sub := &a.subAllocators[subIndex]

		for _, alloc := range sub.allocations {
			if alloc == nil {
				continue
			}

			for _, region := range alloc.usedRegions {
				a.logger.LogAttrs(context.Background(), slog.LevelError, "unreleased region found in allocation",
					slog.Int("SubAllocator", subIndex),
					slog.Int("Allocation", alloc.index),
					slog.Int("Offset", region.offset),
					slog.Int("Size", region.size),
					slog.Bool("IsBuffer", region.isBuffer),
				)
			}

			a.freeAllocation(sub, alloc)
		}

		sub.allocations = nil
		sub.freeSlots = nil
		sub.sortedFreeRegions = nil
	}

	a.regionsByResource = swiss.NewMap[any, *UsedRegion](64)
	a.defragTarget = nil
}
