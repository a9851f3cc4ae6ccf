package vulkan

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/fna3d/memory"
)

type DriverSetup struct {
	MemoryTypes    []core1_0.MemoryType
	MemoryHeaps    []core1_0.MemoryHeap
	MaxAllocations int
	Extensions     ExtensionData
	Options        MemoryDriverOptions
}

func defaultSetup() DriverSetup {
	return DriverSetup{
		MemoryTypes: []core1_0.MemoryType{
			{
				PropertyFlags: core1_0.MemoryPropertyDeviceLocal,
				HeapIndex:     0,
			},
			{
				PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
				HeapIndex:     1,
			},
			{
				PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
				HeapIndex:     0,
			},
		},
		MemoryHeaps: []core1_0.MemoryHeap{
			{
				Size:  1000000,
				Flags: core1_0.MemoryHeapDeviceLocal,
			},
			{
				Size:  1000000,
				Flags: 0,
			},
		},
		MaxAllocations: 4096,
	}
}

func readyDriver(t *testing.T, ctrl *gomock.Controller, setup DriverSetup) (*mocks.MockDevice, *MemoryDriver) {
	device := mocks.NewMockDevice(ctrl)

	driver, err := newMemoryDriver(nil, device, &core1_0.PhysicalDeviceProperties{
		DriverType: core1_0.PhysicalDeviceTypeDiscreteGPU,
		Limits: &core1_0.PhysicalDeviceLimits{
			MaxMemoryAllocationCount: setup.MaxAllocations,
		},
	}, &core1_0.PhysicalDeviceMemoryProperties{
		MemoryTypes: setup.MemoryTypes,
		MemoryHeaps: setup.MemoryHeaps,
	}, &setup.Extensions, setup.Options)
	require.NoError(t, err)

	return device, driver
}

func TestMemoryDriver_HeapSizeLimitsLength(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)

	_, err := newMemoryDriver(nil, device, &core1_0.PhysicalDeviceProperties{
		Limits: &core1_0.PhysicalDeviceLimits{},
	}, &core1_0.PhysicalDeviceMemoryProperties{
		MemoryHeaps: []core1_0.MemoryHeap{{Size: 100}, {Size: 100}},
	}, &ExtensionData{}, MemoryDriverOptions{
		HeapSizeLimits: []int{100},
	})
	require.Error(t, err)
}

func TestMemoryDriver_AllocateAndMapHostVisible(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: 1,
		AllocationSize:  1000,
	}).Return(vulkanMemory, core1_0.VKSuccess, nil)

	data := make([]byte, 1000)
	dataPtr := unsafe.Pointer(&data[0])
	vulkanMemory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(dataPtr, core1_0.VKSuccess, nil)

	mem, mapped, res, err := driver.AllocDeviceMemory(memory.AllocateInfo{
		SubAllocatorIndex: 1,
		Size:              1000,
		HostVisible:       true,
	})
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.Equal(t, dataPtr, mapped)
	require.Equal(t, vulkanMemory, mem.(*DeviceMemory).VulkanDeviceMemory())
	require.Equal(t, 1, mem.(*DeviceMemory).MemoryTypeIndex())

	require.Equal(t, 1, driver.AllocationCount())
	require.Equal(t, 1, driver.HeapUsage(1).AllocationCount)
	require.Equal(t, 1000, driver.HeapUsage(1).AllocationBytes)
	require.Equal(t, 0, driver.HeapUsage(0).AllocationCount)

	vulkanMemory.EXPECT().Unmap()
	vulkanMemory.EXPECT().Free(gomock.Nil())

	driver.FreeDeviceMemory(mem, 1000)
	require.Equal(t, 0, driver.AllocationCount())
	require.Equal(t, 0, driver.HeapUsage(1).AllocationBytes)
}

func TestMemoryDriver_DeviceLocalIsNotMapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: 0,
		AllocationSize:  2000,
	}).Return(vulkanMemory, core1_0.VKSuccess, nil)

	mem, mapped, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{
		SubAllocatorIndex: 0,
		Size:              2000,
		DeviceLocal:       true,
	})
	require.NoError(t, err)
	require.Nil(t, mapped)

	vulkanMemory.EXPECT().Free(gomock.Nil())
	driver.FreeDeviceMemory(mem, 2000)
}

func TestMemoryDriver_DedicatedAllocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	setup := defaultSetup()
	setup.Extensions.DedicatedAllocations = true
	device, driver := readyDriver(t, ctrl, setup)

	buffer := mocks.EasyMockBuffer(ctrl)
	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: 0,
		AllocationSize:  5000,
		NextOptions: common.NextOptions{
			Next: khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
				Buffer: buffer,
			},
		},
	}).Return(vulkanMemory, core1_0.VKSuccess, nil)

	_, _, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{
		SubAllocatorIndex: 0,
		Size:              5000,
		DedicatedResource: buffer,
	})
	require.NoError(t, err)

	// The wrong resource type is rejected before anything is allocated
	_, _, _, err = driver.AllocDeviceMemory(memory.AllocateInfo{
		SubAllocatorIndex: 0,
		Size:              5000,
		DedicatedResource: buffer,
		DedicatedIsImage:  true,
	})
	require.Error(t, err)
	require.Equal(t, 1, driver.AllocationCount())
	require.Equal(t, 5000, driver.HeapUsage(0).AllocationBytes)
}

func TestMemoryDriver_DedicatedWithoutExtension(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	image := mocks.EasyMockImage(ctrl)
	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: 0,
		AllocationSize:  5000,
	}).Return(vulkanMemory, core1_0.VKSuccess, nil)

	_, _, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{
		SubAllocatorIndex: 0,
		Size:              5000,
		DedicatedResource: image,
		DedicatedIsImage:  true,
	})
	require.NoError(t, err)
}

func TestMemoryDriver_TooManyObjects(t *testing.T) {
	ctrl := gomock.NewController(t)
	setup := defaultSetup()
	setup.MaxAllocations = 1
	device, driver := readyDriver(t, ctrl, setup)

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(vulkanMemory, core1_0.VKSuccess, nil)

	_, _, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 0, Size: 100})
	require.NoError(t, err)

	_, _, res, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 0, Size: 100})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorTooManyObjects, res)
	require.Equal(t, 1, driver.AllocationCount())
	require.Equal(t, 100, driver.HeapUsage(0).AllocationBytes)
}

func TestMemoryDriver_HeapSizeLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	setup := defaultSetup()
	setup.Options.HeapSizeLimits = []int{1500, 0}
	device, driver := readyDriver(t, ctrl, setup)

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(vulkanMemory, core1_0.VKSuccess, nil)

	_, _, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 0, Size: 1000})
	require.NoError(t, err)

	_, _, res, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 2, Size: 1000})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.Equal(t, 1, driver.AllocationCount())
	require.Equal(t, 1000, driver.HeapUsage(0).AllocationBytes)
}

func TestMemoryDriver_AllocateFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	device.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(nil, core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError())

	_, _, res, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 0, Size: 1000})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.Equal(t, 0, driver.AllocationCount())
	require.Equal(t, 0, driver.HeapUsage(0).AllocationCount)

	_, _, _, err = driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 3, Size: 1000})
	require.Error(t, err)
}

func TestMemoryDriver_MapFailureFreesMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(vulkanMemory, core1_0.VKSuccess, nil)
	vulkanMemory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(unsafe.Pointer(nil), core1_0.VKErrorMemoryMapFailed, errors.New("map failed"))
	vulkanMemory.EXPECT().Free(gomock.Nil())

	_, _, res, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 1, Size: 1000, HostVisible: true})
	require.ErrorContains(t, err, "map failed")
	require.Equal(t, core1_0.VKErrorMemoryMapFailed, res)
	require.Equal(t, 0, driver.AllocationCount())
	require.Equal(t, 0, driver.HeapUsage(1).AllocationBytes)
}

func TestMemoryDriver_Bind(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, driver := readyDriver(t, ctrl, defaultSetup())

	vulkanMemory := mocks.EasyMockDeviceMemory(ctrl)
	device.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(vulkanMemory, core1_0.VKSuccess, nil)

	mem, _, _, err := driver.AllocDeviceMemory(memory.AllocateInfo{SubAllocatorIndex: 0, Size: 4096})
	require.NoError(t, err)

	buffer := mocks.EasyMockBuffer(ctrl)
	buffer.EXPECT().BindBufferMemory(vulkanMemory, 256).Return(core1_0.VKSuccess, nil)
	res, err := driver.BindBufferMemory(buffer, mem, 256)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	image := mocks.EasyMockImage(ctrl)
	image.EXPECT().BindImageMemory(vulkanMemory, 1024).Return(core1_0.VKSuccess, nil)
	res, err = driver.BindImageMemory(image, mem, 1024)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	_, err = driver.BindBufferMemory(image, mem, 0)
	require.Error(t, err)
	_, err = driver.BindImageMemory(buffer, mem, 0)
	require.Error(t, err)
	_, err = driver.BindBufferMemory(buffer, "not device memory", 0)
	require.Error(t, err)
}

func TestMemoryDriver_FindMemoryType(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, driver := readyDriver(t, ctrl, defaultSetup())

	require.Equal(t, 3, driver.MemoryTypeCount())

	index, err := driver.FindMemoryType(0xffffffff, false, true)
	require.NoError(t, err)
	require.Equal(t, 0, index)

	index, err = driver.FindMemoryType(0xffffffff, true, false)
	require.NoError(t, err)
	require.Equal(t, 1, index)

	index, err = driver.FindMemoryType(0xffffffff, true, true)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	// Only a host-visible type is allowed, so it is used for device-only data
	index, err = driver.FindMemoryType(1<<2, false, true)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	_, err = driver.FindMemoryType(1<<0, true, false)
	require.Error(t, err)
}
