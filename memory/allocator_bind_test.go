package memory

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/fna3d/memutils"
)

func TestNew_Validation(t *testing.T) {
	driver := newFakeDriver(t)

	_, err := New(nil, nil, CreateOptions{SubAllocatorCount: 1})
	require.Error(t, err)

	_, err = New(nil, driver, CreateOptions{})
	require.True(t, errors.Is(err, memutils.NonPositiveError))

	_, err = New(nil, driver, CreateOptions{SubAllocatorCount: 1, StartingAllocationSize: 128, MaxAllocationSize: 64})
	require.Error(t, err)

	allocator, err := New(nil, driver, CreateOptions{SubAllocatorCount: 3})
	require.NoError(t, err)
	require.Equal(t, 3, allocator.SubAllocatorCount())
	require.Equal(t, DefaultStartingAllocationSize, allocator.subAllocators[2].NextAllocationSize())
}

func TestBindResource_GrowsCapacity(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	// Three 20M binds fit in the first 64M allocation: 60M of 64M
	first := bindBuffer(t, allocator, driver, 20_000_000, 256)
	second := bindBuffer(t, allocator, driver, 20_000_000, 256)
	third := bindBuffer(t, allocator, driver, 20_000_000, 256)

	require.Equal(t, []int{64_000_000}, driver.allocSizes)
	require.Equal(t, 0, first.region.ResourceOffset())
	require.Equal(t, 20_000_000, second.region.ResourceOffset())
	require.Equal(t, 40_000_000, third.region.ResourceOffset())
	require.Equal(t, 0, third.region.AllocationIndex())

	// The 4M left over can't hold the fourth, so capacity grows with the doubled hint
	fourth := bindBuffer(t, allocator, driver, 20_000_000, 256)
	require.Equal(t, []int{64_000_000, 128_000_000}, driver.allocSizes)
	require.Equal(t, 1, fourth.region.AllocationIndex())
	require.Equal(t, 0, fourth.region.ResourceOffset())
	require.Equal(t, 256_000_000, allocator.subAllocators[0].NextAllocationSize())

	var stats memutils.DetailedStatistics
	allocator.CalculateStatistics(&stats, nil)
	require.Equal(t, 2, stats.AllocationCount)
	require.Equal(t, 4, stats.RegionCount)
	require.Equal(t, 192_000_000, stats.AllocationBytes)
	require.Equal(t, 80_000_000, stats.RegionBytes)
}

func TestBindResource_ReusesFreedRegion(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	first := bindBuffer(t, allocator, driver, 10_000_000, 256)
	require.NoError(t, allocator.RemoveUsedRegion(first.region))
	require.NoError(t, allocator.Validate())

	second := bindBuffer(t, allocator, driver, 5_000_000, 256)
	require.Equal(t, 0, second.region.Offset())
	require.Equal(t, 0, second.region.AllocationIndex())
	require.Equal(t, []int{64_000_000}, driver.allocSizes)
}

func TestBindResource_AlignmentPadding(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	small := bindBuffer(t, allocator, driver, 100, 1)
	aligned := bindBuffer(t, allocator, driver, 1000, 256)

	require.Equal(t, 0, small.region.Offset())
	require.Equal(t, 100, small.region.Size())

	// Padding between 100 and 256 belongs to the used region
	require.Equal(t, 100, aligned.region.Offset())
	require.Equal(t, 256, aligned.region.ResourceOffset())
	require.Equal(t, 1156, aligned.region.Size())
	require.Equal(t, 256, aligned.handle.resource.offset)

	require.NoError(t, allocator.RemoveUsedRegion(small.region))
	require.NoError(t, allocator.RemoveUsedRegion(aligned.region))

	sub := &allocator.subAllocators[0]
	require.Len(t, sub.sortedFreeRegions, 1)
	require.Equal(t, 64_000_000, sub.sortedFreeRegions[0].Size())
}

func TestBindResource_LargeRequestUsesIncrement(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bindBuffer(t, allocator, driver, 70_000_000, 4)
	require.Equal(t, []int{80_000_000}, driver.allocSizes)
	// The hint only grows when it was used
	require.Equal(t, 64_000_000, allocator.subAllocators[0].NextAllocationSize())
}

func TestBindResource_MaxAllocationSize(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{MaxAllocationSize: 128_000_000})

	bindBuffer(t, allocator, driver, 64_000_000, 1)
	bindBuffer(t, allocator, driver, 100_000_000, 1)
	bindBuffer(t, allocator, driver, 128_000_000, 1)

	require.Equal(t, []int{64_000_000, 128_000_000, 128_000_000}, driver.allocSizes)
	require.Equal(t, 128_000_000, allocator.subAllocators[0].NextAllocationSize())
}

func TestBindResource_Dedicated(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bindBuffer(t, allocator, driver, 1000, 1)

	resource := driver.newResource(3000)
	region, _, err := allocator.BindResource(BindInfo{
		RequiredSize:   3000,
		ResourceSize:   3000,
		ForceDedicated: true,
		IsImage:        true,
		Resource:       resource,
	})
	require.NoError(t, err)
	require.NoError(t, allocator.Validate())

	require.Equal(t, []int{64_000_000, 3000}, driver.allocSizes)
	require.False(t, region.IsBuffer())

	alloc := allocator.subAllocators[0].Allocation(region.AllocationIndex())
	require.True(t, alloc.Dedicated())
	require.False(t, alloc.Available())
	require.Equal(t, 0, alloc.FreeRegionCount())

	// Dedicated allocations are never offered to other resources
	next := bindBuffer(t, allocator, driver, 1000, 1)
	require.Equal(t, 0, next.region.AllocationIndex())

	require.NoError(t, allocator.RemoveUsedRegion(region))
	require.Equal(t, 1, allocator.SweepEmptyAllocations())
	require.Len(t, driver.live, 1)
}

func TestBindResource_NoCrossAllocationCoalescing(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{MaxAllocationSize: 64_000_000})

	bindBuffer(t, allocator, driver, 40_000_000, 1)
	bindBuffer(t, allocator, driver, 40_000_000, 1)
	require.Equal(t, 48_000_000, freeBytes(allocator))

	// 24M + 24M is free across two allocations, but no single region holds 30M
	third := bindBuffer(t, allocator, driver, 30_000_000, 1)
	require.Equal(t, []int{64_000_000, 64_000_000, 64_000_000}, driver.allocSizes)
	require.Equal(t, 2, third.region.AllocationIndex())
}

func TestBindResource_LargestRegionFirst(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	// Layout: UUUUFFFF..., then free the first region so two free regions exist
	first := bindBuffer(t, allocator, driver, 1_000_000, 1)
	bindBuffer(t, allocator, driver, 1_000_000, 1)
	require.NoError(t, allocator.RemoveUsedRegion(first.region))

	// The small hole at the start would be a best fit, but the largest region is used
	next := bindBuffer(t, allocator, driver, 500_000, 1)
	require.Equal(t, 2_000_000, next.region.Offset())
}

func TestBindResource_InvalidRequests(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	_, _, err := allocator.BindResource(BindInfo{RequiredSize: 0})
	require.Error(t, err)

	_, _, err = allocator.BindResource(BindInfo{RequiredSize: 10, RequiredAlignment: 24})
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	_, _, err = allocator.BindResource(BindInfo{SubAllocatorIndex: 4, RequiredSize: 10})
	require.Error(t, err)
	require.Empty(t, driver.allocSizes)
}

func TestRemoveUsedRegion_RoundTrip(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bindBuffer(t, allocator, driver, 3_000_000, 256)
	middle := bindBuffer(t, allocator, driver, 5_000_000, 4096)
	bindBuffer(t, allocator, driver, 7_000_000, 16)
	require.NoError(t, allocator.RemoveUsedRegion(middle.region))

	before := freeBytes(allocator)
	bound := bindBuffer(t, allocator, driver, 1_234_567, 512)
	require.NoError(t, allocator.RemoveUsedRegion(bound.region))
	require.NoError(t, allocator.Validate())
	require.Equal(t, before, freeBytes(allocator))

	err := allocator.RemoveUsedRegion(bound.region)
	require.Error(t, err)
}

func TestRemoveUsedRegion_MergesNeighbors(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	a := bindBuffer(t, allocator, driver, 1_000_000, 1)
	b := bindBuffer(t, allocator, driver, 1_000_000, 1)
	c := bindBuffer(t, allocator, driver, 1_000_000, 1)
	alloc := allocator.subAllocators[0].Allocation(0)

	// FUUFFFF...
	require.NoError(t, allocator.RemoveUsedRegion(a.region))
	require.Equal(t, 2, alloc.FreeRegionCount())

	// FFUFFFF...: a and b become one region
	require.NoError(t, allocator.RemoveUsedRegion(b.region))
	require.Equal(t, 2, alloc.FreeRegionCount())
	for _, region := range alloc.freeRegions {
		if region.Offset() == 0 {
			require.Equal(t, 2_000_000, region.Size())
		}
	}

	// FFFFFFF...: everything is a single region again
	require.NoError(t, allocator.RemoveUsedRegion(c.region))
	require.Equal(t, 1, alloc.FreeRegionCount())
	require.Equal(t, 64_000_000, alloc.freeRegions[0].Size())
	require.NoError(t, allocator.Validate())
}

func TestAllocator_RandomizedInvariants(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{SubAllocatorCount: 2, StartingAllocationSize: 1_000_000, MaxAllocationSize: 4_000_000})
	rng := rand.New(rand.NewSource(1))

	var live []*UsedRegion
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rng.Intn(3) != 0 {
			size := 1 + rng.Intn(300_000)
			resource := driver.newResource(size)
			region, _, err := allocator.BindResource(BindInfo{
				SubAllocatorIndex: rng.Intn(2),
				RequiredSize:      size,
				RequiredAlignment: 1 << uint(rng.Intn(13)),
				ResourceSize:      size,
				Resource:          resource,
				ForceDedicated:    rng.Intn(50) == 0,
			})
			require.NoError(t, err)
			live = append(live, region)
		} else {
			index := rng.Intn(len(live))
			require.NoError(t, allocator.RemoveUsedRegion(live[index]))
			live[index] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if rng.Intn(20) == 0 {
			allocator.SweepEmptyAllocations()
		}

		require.NoError(t, allocator.Validate())
	}

	for _, region := range live {
		require.NoError(t, allocator.RemoveUsedRegion(region))
	}
	allocator.SweepEmptyAllocations()
	require.Empty(t, driver.live)
}

func TestSweepEmptyAllocations(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{MaxAllocationSize: 64_000_000})

	first := bindBuffer(t, allocator, driver, 60_000_000, 1)
	second := bindBuffer(t, allocator, driver, 60_000_000, 1)
	require.Len(t, driver.live, 2)

	// Nothing was freed yet
	require.Equal(t, 0, allocator.SweepEmptyAllocations())

	require.NoError(t, allocator.RemoveUsedRegion(first.region))
	require.Len(t, driver.live, 2)
	require.Equal(t, 1, allocator.SweepEmptyAllocations())
	require.Len(t, driver.live, 1)

	// The freed slot is reused by the next allocation
	third := bindBuffer(t, allocator, driver, 60_000_000, 1)
	require.Equal(t, first.region.AllocationIndex(), third.region.AllocationIndex())

	require.NoError(t, allocator.RemoveUsedRegion(second.region))
	require.NoError(t, allocator.RemoveUsedRegion(third.region))
	require.Equal(t, 2, allocator.SweepEmptyAllocations())
	require.Empty(t, driver.live)
}

func TestAllocator_MapHostVisible(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{StartingAllocationSize: 4096})

	_, _, err := allocator.BindResource(BindInfo{
		RequiredSize: 100,
		HostVisible:  true,
		ResourceSize: 100,
		Resource:     driver.newResource(100),
	})
	require.NoError(t, err)

	resource := driver.newResource(16)
	region, _, err := allocator.BindResource(BindInfo{
		RequiredSize:      16,
		RequiredAlignment: 256,
		HostVisible:       true,
		ResourceSize:      16,
		Resource:          resource,
	})
	require.NoError(t, err)

	ptr, res, err := allocator.Map(region)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	*(*uint32)(ptr) = 0xdeadbeef
	require.NoError(t, allocator.Unmap(region))

	require.Equal(t, byte(0xef), resource.memory.host[256])
	require.Equal(t, byte(0xde), resource.memory.host[259])
}

func TestAllocator_MapRequiresHostVisible(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bound := bindBuffer(t, allocator, driver, 100, 1)
	ptr, res, err := allocator.Map(bound.region)
	require.Error(t, err)
	require.Nil(t, ptr)
	require.Equal(t, core1_0.VKErrorMemoryMapFailed, res)
}

func TestAllocator_RegionForResource(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bound := bindBuffer(t, allocator, driver, 100, 1)
	region, ok := allocator.RegionForResource(bound.handle.resource)
	require.True(t, ok)
	require.Same(t, bound.region, region)

	require.NoError(t, allocator.RemoveUsedRegion(bound.region))
	_, ok = allocator.RegionForResource(bound.handle.resource)
	require.False(t, ok)
}

func TestAllocator_MemoryCallbacks(t *testing.T) {
	driver := newFakeDriver(t)

	var allocated, freed []int
	allocator := newTestAllocator(t, driver, CreateOptions{
		MemoryCallbackOptions: &MemoryCallbackOptions{
			Allocate: func(allocator *Allocator, subAllocatorIndex int, memory DeviceMemory, size int, userData interface{}) {
				require.Equal(t, "user", userData)
				allocated = append(allocated, size)
			},
			Free: func(allocator *Allocator, subAllocatorIndex int, memory DeviceMemory, size int, userData interface{}) {
				freed = append(freed, size)
			},
			UserData: "user",
		},
	})

	bound := bindBuffer(t, allocator, driver, 100, 1)
	require.Equal(t, []int{64_000_000}, allocated)
	require.Empty(t, freed)

	require.NoError(t, allocator.RemoveUsedRegion(bound.region))
	allocator.SweepEmptyAllocations()
	require.Equal(t, []int{64_000_000}, freed)
}

func TestAllocator_BuildStatsString(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{SubAllocatorCount: 2})

	bindBuffer(t, allocator, driver, 1000, 256)
	bindBuffer(t, allocator, driver, 2000, 256)

	var parsed struct {
		SubAllocators []struct {
			Index       int
			Stats       map[string]int
			Allocations map[string]struct {
				Size        int
				UsedRegions []map[string]any
				FreeRegions []map[string]any
			}
		}
		Total           map[string]int
		Defragmentation map[string]int
	}

	require.NoError(t, json.Unmarshal([]byte(allocator.BuildStatsString(true)), &parsed))
	require.Len(t, parsed.SubAllocators, 2)
	require.Equal(t, 1, parsed.Total["AllocationCount"])
	require.Equal(t, 2, parsed.Total["RegionCount"])
	// The second region starts at 1000 and carries 24 bytes of alignment padding
	require.Equal(t, 3024, parsed.Total["RegionBytes"])
	require.Len(t, parsed.SubAllocators[0].Allocations["0"].UsedRegions, 2)
	require.Len(t, parsed.SubAllocators[0].Allocations["0"].FreeRegions, 1)
	require.Equal(t, 0, parsed.Defragmentation["RegionsMoved"])

	summary := allocator.BuildStatsString(false)
	require.NotContains(t, summary, "UsedRegions")
}

func TestAllocator_Destroy(t *testing.T) {
	driver := newFakeDriver(t)
	allocator := newTestAllocator(t, driver, CreateOptions{})

	bindBuffer(t, allocator, driver, 1000, 1)
	bindBuffer(t, allocator, driver, 1000, 1)
	bindBuffer(t, allocator, driver, 70_000_000, 1)

	allocator.Destroy()
	require.Empty(t, driver.live)
	require.Equal(t, 0, allocator.subAllocators[0].AllocationCount())
}
