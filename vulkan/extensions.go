package vulkan

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2"
)

// ExtensionData records which optional device capabilities the memory driver can use
type ExtensionData struct {
	// DedicatedAllocations is true when MemoryDedicatedAllocateInfo may be chained onto allocations
	DedicatedAllocations bool
}

func NewExtensionData(device core1_0.Device) *ExtensionData {
	data := &ExtensionData{}

	device11 := core1_1.PromoteDevice(device)
	if device11 != nil {
		// Core 1.1 promotes khr_dedicated_allocation
		data.DedicatedAllocations = true
		return data
	}

	// khr_dedicated_allocation depends on khr_get_memory_requirements2
	if device.IsDeviceExtensionActive(khr_get_memory_requirements2.ExtensionName) &&
		device.IsDeviceExtensionActive(khr_dedicated_allocation.ExtensionName) {
		data.DedicatedAllocations = true
	}

	return data
}
