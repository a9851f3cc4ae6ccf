package memory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/fna3d/memutils"
	"github.com/vkngwrapper/fna3d/memutils/defrag"
	"golang.org/x/exp/slog"
)

// findDefragTarget picks the first sub-allocated allocation with more than one free region
func (a *Allocator) findDefragTarget() *allocationRef {
	if a.defragTarget != nil {
		return a.defragTarget
	}

	for subIndex := range a.subAllocators {
		for _, alloc := range a.subAllocators[subIndex].allocations {
			if alloc == nil || alloc.dedicated || !alloc.available {
				continue
			}

			if len(alloc.freeRegions) > 1 && len(alloc.usedRegions) > 0 {
				return &allocationRef{subAllocator: subIndex, allocation: alloc.index}
			}
		}
	}

	return nil
}

// Defragment relocates the resources of one fragmented allocation into other memory, so that the
// fragmented allocation can be freed once DestroyDefragmentedRegions has run. The allocation stops
// accepting new resources for the duration. Passes are bounded by CreateOptions.MaxPassBytes and
// CreateOptions.MaxPassRegions: a pass that hits a bound is resumed by the next call.
//
// Defragment returns true if any resource was relocated. The DefragDriver contract requires
// EndDefragCommands to wait on the relocation copies, so the old regions are handed to
// DestroyDefragmentedRegions only once it succeeds. If it fails, they are held until a later pass's
// EndDefragCommands succeeds.
//
// If a relocation fails, the pass is aborted and the allocation accepts new resources again. Resources
// relocated before the failure stay relocated.
func (a *Allocator) Defragment() (bool, common.VkResult, error) {
	a.logger.Debug("Allocator::Defragment")

	a.defragMutex.Lock()
	defer a.defragMutex.Unlock()

	a.mutex.Lock()
	target := a.findDefragTarget()
	if target == nil {
		a.scheduler.Done()
		a.mutex.Unlock()
		return false, core1_0.VKSuccess, nil
	}

	sub := &a.subAllocators[target.subAllocator]
	alloc := sub.allocations[target.allocation]
	a.defragTarget = target
	sub.setAvailable(alloc, false)

	candidates := make([]*UsedRegion, 0, len(alloc.usedRegions))
	for _, region := range alloc.usedRegions {
		if region.bound && !region.moved {
			candidates = append(candidates, region)
		}
	}
	a.mutex.Unlock()

	err := a.driver.BeginDefragCommands()
	if err != nil {
		a.abortDefrag(sub, alloc, err)
		return false, core1_0.VKErrorUnknown, errors.Mark(errors.Wrap(err, "failed to begin defragmentation commands"), ErrDefragmentationFailed)
	}

	a.pass.Reset()
	budgetReached := false
	var released []*UsedRegion
	var passErr error
	var passRes common.VkResult = core1_0.VKSuccess

	for i, region := range candidates {
		status := a.pass.CheckCounters(region.size)
		if a.pass.Stats.RegionsMoved > 0 {
			if status == defrag.CounterIgnore {
				continue
			} else if status == defrag.CounterEnd {
				budgetReached = true
				break
			}
		}

		moved, release, res, err := a.relocate(alloc, region)
		if release != nil {
			released = append(released, release)
		}
		if err != nil {
			passRes = res
			passErr = err
			break
		}

		if moved && a.pass.IncrementCounters(region.size) {
			budgetReached = i < len(candidates)-1
			break
		}
	}

	err = a.driver.EndDefragCommands()
	if err != nil {
		passErr = errors.CombineErrors(passErr, errors.Wrap(err, "failed to complete defragmentation commands"))
		passRes = core1_0.VKErrorUnknown
	}
	a.queueReleasedRegions(released, err == nil)

	moved := a.pass.Stats.RegionsMoved > 0

	if passErr != nil {
		a.mutex.Lock()
		a.defragStats.Add(a.pass.Stats)
		a.mutex.Unlock()

		a.abortDefrag(sub, alloc, passErr)
		if passRes == core1_0.VKSuccess {
			passRes = core1_0.VKErrorUnknown
		}
		return moved, passRes, errors.Mark(passErr, ErrDefragmentationFailed)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.defragStats.Add(a.pass.Stats)

	if budgetReached {
		return moved, core1_0.VKSuccess, nil
	}

	a.defragTarget = nil

	for _, region := range alloc.usedRegions {
		if !region.moved {
			// Skipped or bound mid-pass: the allocation cannot be drained, so let it serve
			// new resources again
			sub.setAvailable(alloc, true)
			memutils.DebugValidate(sub)
			return moved, core1_0.VKSuccess, nil
		}
	}

	a.defragStats.PassesCompleted++
	a.logger.Debug("Allocator::Defragment drained allocation",
		slog.Int("SubAllocator", sub.index),
		slog.Int("Allocation", alloc.index),
		slog.Int("BytesMoved", a.pass.Stats.BytesMoved),
	)

	return moved, core1_0.VKSuccess, nil
}

func (a *Allocator) abortDefrag(sub *SubAllocator, alloc *Allocation, err error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.LogAttrs(context.Background(), slog.LevelWarn, "aborted defragmentation pass",
		slog.Int("SubAllocator", sub.index),
		slog.Int("Allocation", alloc.index),
		slog.Any("Error", err),
	)

	a.defragStats.PassesFailed++
	a.defragTarget = nil
	if sub.Allocation(alloc.index) == alloc {
		sub.setAvailable(alloc, true)
	}
	memutils.DebugValidate(sub)
}

// queueReleasedRegions hands the regions released by a pass to DestroyDefragmentedRegions. Until a pass's
// EndDefragCommands succeeds its copies are not known to be complete, so its regions are held back. A
// later successful wait also covers every earlier submission, which releases the held regions.
func (a *Allocator) queueReleasedRegions(released []*UsedRegion, confirmed bool) {
	if len(released) == 0 && !confirmed {
		return
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !confirmed {
		a.unconfirmedRegions = append(a.unconfirmedRegions, released...)
		return
	}

	a.regionsToDestroy = append(a.regionsToDestroy, a.unconfirmedRegions...)
	a.regionsToDestroy = append(a.regionsToDestroy, released...)
	a.unconfirmedRegions = nil
}

// relocate moves one resource out of alloc. It returns false without an error if the region was
// removed by its owner while the pass was running. The returned region, if any, must be destroyed
// once the pass's copies are complete.
func (a *Allocator) relocate(alloc *Allocation, src *UsedRegion) (bool, *UsedRegion, common.VkResult, error) {
	alloc.mapLock.Lock()
	defer alloc.mapLock.Unlock()

	a.mutex.Lock()
	stale := src.freed || src.moved
	a.mutex.Unlock()
	if stale {
		return false, nil, core1_0.VKSuccess, nil
	}

	resource, res, err := a.driver.CreateDefragResource(src)
	if err != nil {
		return false, nil, res, errors.Wrapf(err, "failed to create relocation target for region at offset %d", src.offset)
	}

	dst, res, err := a.BindResource(BindInfo{
		SubAllocatorIndex: src.subAllocator,
		RequiredSize:      src.requiredSize,
		RequiredAlignment: src.alignment,
		HostVisible:       src.hostVisible,
		DeviceLocal:       src.deviceLocal,
		ResourceSize:      src.resourceSize,
		IsImage:           !src.isBuffer,
		Resource:          resource,
		DefragHandle:      src.defragHandle,
	})
	if err != nil {
		a.driver.DestroyDefragResource(resource, src.isBuffer)
		return false, nil, res, errors.Wrapf(err, "failed to bind relocation target for region at offset %d", src.offset)
	}

	if src.isBuffer {
		err = a.driver.DefragBuffer(src, dst)
	} else {
		err = a.driver.DefragImage(src, dst)
	}
	if err != nil {
		a.discardRelocationTarget(dst, resource)
		return false, nil, core1_0.VKErrorUnknown, errors.Wrapf(err, "failed to copy region at offset %d", src.offset)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if src.freed {
		// The owner removed the region while it was being copied. The copy into dst is already
		// recorded, so dst is released along with the relocated regions.
		return false, dst, core1_0.VKSuccess, nil
	}

	src.moved = true
	return true, src, core1_0.VKSuccess, nil
}

func (a *Allocator) discardRelocationTarget(dst *UsedRegion, resource any) {
	a.driver.DestroyDefragResource(resource, dst.isBuffer)

	a.mutex.Lock()
	defer a.mutex.Unlock()

	err := a.removeUsedRegionWithLock(dst)
	if err != nil {
		panic(errors.Wrap(err, "failed to release relocation target"))
	}
}

// DestroyDefragmentedRegions destroys the native resources that defragmentation relocated away from
// and releases their old regions. It must only be called once the relocation copies have completed.
// It returns the number of regions released.
func (a *Allocator) DestroyDefragmentedRegions() int {
	a.mutex.Lock()
	regions := a.regionsToDestroy
	a.regionsToDestroy = nil
	a.mutex.Unlock()

	if len(regions) == 0 {
		return 0
	}

	a.logger.Debug("Allocator::DestroyDefragmentedRegions", slog.Int("Count", len(regions)))

	for _, region := range regions {
		a.driver.DestroyDefragResource(region.resource, region.isBuffer)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, region := range regions {
		if region.freed {
			continue
		}

		err := a.removeUsedRegionWithLock(region)
		if err != nil {
			panic(errors.Wrap(err, "failed to release defragmented region"))
		}
	}

	return len(regions)
}

// DefragmentationStats returns cumulative statistics for every defragmentation pass so far
func (a *Allocator) DefragmentationStats() defrag.DefragmentationStats {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.defragStats
}
