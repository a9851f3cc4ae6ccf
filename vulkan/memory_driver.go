package vulkan

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/fna3d/internal/utils"
	"github.com/vkngwrapper/fna3d/memory"
	"github.com/vkngwrapper/fna3d/memutils"
	"golang.org/x/exp/slog"
)

// MemoryDriverOptions contains optional settings when creating a MemoryDriver
type MemoryDriverOptions struct {
	// VulkanCallbacks is an optional set of callbacks that Vulkan will execute when device memory
	// is allocated or freed
	VulkanCallbacks *driver.AllocationCallbacks

	// HeapSizeLimits can be left empty. If it is provided, it must have one entry per memory heap
	// of the PhysicalDevice. Each entry is either the maximum number of bytes that may be allocated
	// from that heap, or 0 for no limit.
	HeapSizeLimits []int
}

// DeviceMemory is the memory.DeviceMemory returned from a MemoryDriver
type DeviceMemory struct {
	memory          core1_0.DeviceMemory
	memoryTypeIndex int
	mapped          bool
}

func (m *DeviceMemory) VulkanDeviceMemory() core1_0.DeviceMemory {
	return m.memory
}

func (m *DeviceMemory) MemoryTypeIndex() int {
	return m.memoryTypeIndex
}

// MemoryDriver allocates, maps, and binds Vulkan device memory on behalf of a memory.Allocator.
// Each sub-allocator index is a memory type index of the PhysicalDevice.
type MemoryDriver struct {
	logger              *slog.Logger
	device              core1_0.Device
	allocationCallbacks *driver.AllocationCallbacks
	extensionData       *ExtensionData

	limits           *core1_0.PhysicalDeviceLimits
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties
	heapLimits       []int

	// Number of live device memory objects
	memoryCount uint32
	// Number and size of live device memory objects, per heap
	blockCount [common.MaxMemoryHeaps]int32
	blockBytes [common.MaxMemoryHeaps]int64
}

var _ memory.DeviceMemoryDriver = &MemoryDriver{}

// NewMemoryDriver creates a MemoryDriver for device, which must have been created from physicalDevice
func NewMemoryDriver(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, options MemoryDriverOptions) (*MemoryDriver, error) {
	properties, err := physicalDevice.Properties()
	if err != nil {
		return nil, err
	}

	return newMemoryDriver(logger, device, properties, physicalDevice.MemoryProperties(), NewExtensionData(device), options)
}

func newMemoryDriver(
	logger *slog.Logger,
	device core1_0.Device,
	properties *core1_0.PhysicalDeviceProperties,
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties,
	extensionData *ExtensionData,
	options MemoryDriverOptions,
) (*MemoryDriver, error) {
	heapCount := len(memoryProperties.MemoryHeaps)
	if len(options.HeapSizeLimits) > 0 && len(options.HeapSizeLimits) != heapCount {
		return nil, errors.Newf("MemoryDriverOptions.HeapSizeLimits has %d entries, but the PhysicalDevice has %d memory heaps",
			len(options.HeapSizeLimits), heapCount)
	}

	heapLimits := options.HeapSizeLimits
	if len(heapLimits) == 0 {
		heapLimits = make([]int, heapCount)
	}

	return &MemoryDriver{
		logger:              utils.LoggerOrDiscard(logger),
		device:              device,
		allocationCallbacks: options.VulkanCallbacks,
		extensionData:       extensionData,
		limits:              properties.Limits,
		memoryProperties:    memoryProperties,
		heapLimits:          heapLimits,
	}, nil
}

// MemoryTypeCount returns the number of memory types, which is the SubAllocatorCount a
// memory.Allocator using this driver needs
func (d *MemoryDriver) MemoryTypeCount() int {
	return len(d.memoryProperties.MemoryTypes)
}

// FindMemoryType returns the first memory type allowed by memoryTypeBits that has the requested
// properties. Types that are host visible when hostVisible is false are used only if nothing
// else is allowed.
func (d *MemoryDriver) FindMemoryType(memoryTypeBits uint32, hostVisible, deviceLocal bool) (int, error) {
	var requiredFlags core1_0.MemoryPropertyFlags
	if hostVisible {
		requiredFlags |= core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	}
	if deviceLocal {
		requiredFlags |= core1_0.MemoryPropertyDeviceLocal
	}

	fallback := -1
	for typeIndex, memoryType := range d.memoryProperties.MemoryTypes {
		if memoryTypeBits&(1<<typeIndex) == 0 || memoryType.PropertyFlags&requiredFlags != requiredFlags {
			continue
		}

		if !hostVisible && memoryType.PropertyFlags&core1_0.MemoryPropertyHostVisible != 0 {
			if fallback < 0 {
				fallback = typeIndex
			}
			continue
		}

		return typeIndex, nil
	}

	if fallback >= 0 {
		return fallback, nil
	}

	return -1, errors.Newf("no memory type in bits %#x is host visible: %t, device local: %t", memoryTypeBits, hostVisible, deviceLocal)
}

func (d *MemoryDriver) heapIndex(memoryTypeIndex int) int {
	return d.memoryProperties.MemoryTypes[memoryTypeIndex].HeapIndex
}

func (d *MemoryDriver) addBlockAllocation(heapIndex, size int) (common.VkResult, error) {
	heapLimit := d.heapLimits[heapIndex]
	if heapLimit <= 0 {
		atomic.AddInt64(&d.blockBytes[heapIndex], int64(size))
		atomic.AddInt32(&d.blockCount[heapIndex], 1)
		return core1_0.VKSuccess, nil
	}

	for {
		currentVal := atomic.LoadInt64(&d.blockBytes[heapIndex])
		targetVal := currentVal + int64(size)

		if targetVal > int64(heapLimit) {
			return core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()
		}

		if atomic.CompareAndSwapInt64(&d.blockBytes[heapIndex], currentVal, targetVal) {
			break
		}
	}

	atomic.AddInt32(&d.blockCount[heapIndex], 1)
	return core1_0.VKSuccess, nil
}

func (d *MemoryDriver) removeBlockAllocation(heapIndex, size int) {
	newVal := atomic.AddInt64(&d.blockBytes[heapIndex], int64(-size))
	if newVal < 0 {
		panic(fmt.Sprintf("block bytes for heapIndex %d went negative", heapIndex))
	}

	newCountVal := atomic.AddInt32(&d.blockCount[heapIndex], -1)
	if newCountVal < 0 {
		panic(fmt.Sprintf("block count for heapIndex %d went negative", heapIndex))
	}
}

// HeapUsage returns the number and total size of device memory objects live in a heap
func (d *MemoryDriver) HeapUsage(heapIndex int) memutils.Statistics {
	return memutils.Statistics{
		AllocationCount: int(atomic.LoadInt32(&d.blockCount[heapIndex])),
		AllocationBytes: int(atomic.LoadInt64(&d.blockBytes[heapIndex])),
	}
}

// AllocationCount returns the number of live device memory objects
func (d *MemoryDriver) AllocationCount() int {
	return int(atomic.LoadUint32(&d.memoryCount))
}

// AllocDeviceMemory allocates device memory from the memory type info.SubAllocatorIndex, and maps
// it when info.HostVisible is set
func (d *MemoryDriver) AllocDeviceMemory(info memory.AllocateInfo) (mem memory.DeviceMemory, mapped unsafe.Pointer, res common.VkResult, err error) {
	if info.SubAllocatorIndex < 0 || info.SubAllocatorIndex >= d.MemoryTypeCount() {
		return nil, nil, core1_0.VKErrorUnknown, errors.Newf("memory type index %d out of range, there are %d memory types", info.SubAllocatorIndex, d.MemoryTypeCount())
	}

	newDeviceCount := atomic.AddUint32(&d.memoryCount, 1)
	defer func() {
		// If we failed out, roll back the device increment
		if err != nil {
			atomic.AddUint32(&d.memoryCount, ^uint32(0))
		}
	}()

	if int(newDeviceCount) > d.limits.MaxMemoryAllocationCount {
		return nil, nil, core1_0.VKErrorTooManyObjects, core1_0.VKErrorTooManyObjects.ToError()
	}

	heapIndex := d.heapIndex(info.SubAllocatorIndex)
	res, err = d.addBlockAllocation(heapIndex, info.Size)
	if err != nil {
		return nil, nil, res, err
	}
	defer func() {
		if err != nil {
			d.removeBlockAllocation(heapIndex, info.Size)
		}
	}()

	allocInfo := core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: info.SubAllocatorIndex,
		AllocationSize:  info.Size,
	}

	if d.extensionData.DedicatedAllocations && info.DedicatedResource != nil {
		dedicatedAllocInfo := khr_dedicated_allocation.MemoryDedicatedAllocateInfo{}
		if info.DedicatedIsImage {
			image, ok := info.DedicatedResource.(core1_0.Image)
			if !ok {
				return nil, nil, core1_0.VKErrorUnknown, errors.Newf("dedicated resource of type %T is not a core1_0.Image", info.DedicatedResource)
			}
			dedicatedAllocInfo.Image = image
		} else {
			buffer, ok := info.DedicatedResource.(core1_0.Buffer)
			if !ok {
				return nil, nil, core1_0.VKErrorUnknown, errors.Newf("dedicated resource of type %T is not a core1_0.Buffer", info.DedicatedResource)
			}
			dedicatedAllocInfo.Buffer = buffer
		}
		allocInfo.Next = dedicatedAllocInfo
	}

	vulkanMemory, res, err := d.device.AllocateMemory(d.allocationCallbacks, allocInfo)
	if err != nil {
		return nil, nil, res, err
	}

	if info.HostVisible {
		mapped, res, err = vulkanMemory.Map(0, -1, 0)
		if err != nil {
			vulkanMemory.Free(d.allocationCallbacks)
			return nil, nil, res, errors.Wrap(err, "failed to map host-visible device memory")
		}
	}

	d.logger.Debug("MemoryDriver::AllocDeviceMemory",
		slog.Int("MemoryType", info.SubAllocatorIndex),
		slog.Int("Size", info.Size),
		slog.Bool("Dedicated", info.DedicatedResource != nil),
	)

	return &DeviceMemory{
		memory:          vulkanMemory,
		memoryTypeIndex: info.SubAllocatorIndex,
		mapped:          mapped != nil,
	}, mapped, res, nil
}

// FreeDeviceMemory unmaps and frees memory returned from AllocDeviceMemory
func (d *MemoryDriver) FreeDeviceMemory(mem memory.DeviceMemory, size int) {
	deviceMemory := mem.(*DeviceMemory)

	if deviceMemory.mapped {
		deviceMemory.memory.Unmap()
		deviceMemory.mapped = false
	}
	deviceMemory.memory.Free(d.allocationCallbacks)

	d.removeBlockAllocation(d.heapIndex(deviceMemory.memoryTypeIndex), size)
	// Decrement
	atomic.AddUint32(&d.memoryCount, ^uint32(0))
}

func (d *MemoryDriver) deviceMemory(mem memory.DeviceMemory) (*DeviceMemory, error) {
	deviceMemory, ok := mem.(*DeviceMemory)
	if !ok {
		return nil, errors.Newf("device memory of type %T was not allocated by a vulkan.MemoryDriver", mem)
	}

	return deviceMemory, nil
}

// BindBufferMemory binds a core1_0.Buffer to mem at offset
func (d *MemoryDriver) BindBufferMemory(resource any, mem memory.DeviceMemory, offset int) (common.VkResult, error) {
	buffer, ok := resource.(core1_0.Buffer)
	if !ok {
		return core1_0.VKErrorUnknown, errors.Newf("resource of type %T is not a core1_0.Buffer", resource)
	}

	deviceMemory, err := d.deviceMemory(mem)
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	return buffer.BindBufferMemory(deviceMemory.memory, offset)
}

// BindImageMemory binds a core1_0.Image to mem at offset
func (d *MemoryDriver) BindImageMemory(resource any, mem memory.DeviceMemory, offset int) (common.VkResult, error) {
	image, ok := resource.(core1_0.Image)
	if !ok {
		return core1_0.VKErrorUnknown, errors.Newf("resource of type %T is not a core1_0.Image", resource)
	}

	deviceMemory, err := d.deviceMemory(mem)
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	return image.BindImageMemory(deviceMemory.memory, offset)
}
