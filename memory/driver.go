package memory

import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
)

// DeviceMemory is a backend handle to a single device memory allocation
type DeviceMemory any

// AllocateInfo describes a device memory allocation requested from a DeviceMemoryDriver
type AllocateInfo struct {
	// SubAllocatorIndex is the memory category the allocation is made for, usually a memory type index
	SubAllocatorIndex int
	// Size is the number of bytes to allocate
	Size int
	// HostVisible requests a persistent host mapping of the whole allocation
	HostVisible bool
	DeviceLocal bool

	// DedicatedResource is the native resource a dedicated allocation is made for, nil otherwise
	DedicatedResource any
	// DedicatedIsImage is true if DedicatedResource is an image rather than a buffer
	DedicatedIsImage bool
}

// DeviceMemoryDriver is the part of a graphics backend that allocates device memory and binds
// native resources to it
type DeviceMemoryDriver interface {
	// AllocDeviceMemory allocates device memory. If info.HostVisible is set, the returned pointer
	// must be a host mapping of the whole allocation that stays valid until FreeDeviceMemory.
	AllocDeviceMemory(info AllocateInfo) (DeviceMemory, unsafe.Pointer, common.VkResult, error)
	FreeDeviceMemory(memory DeviceMemory, size int)
	BindBufferMemory(buffer any, memory DeviceMemory, offset int) (common.VkResult, error)
	BindImageMemory(image any, memory DeviceMemory, offset int) (common.VkResult, error)
}

// DefragDriver is the part of a graphics backend that relocates resources on behalf of
// the Allocator's defragmentation
type DefragDriver interface {
	// BeginDefragCommands starts recording the copy commands of a defragmentation pass
	BeginDefragCommands() error
	// EndDefragCommands submits the copies recorded since BeginDefragCommands and blocks until the
	// device has completed them
	EndDefragCommands() error

	// CreateDefragResource creates a new native resource with the same size and usage as src.Resource()
	CreateDefragResource(src *UsedRegion) (any, common.VkResult, error)
	// DefragBuffer records a copy from src.Resource() to dst.Resource() and repoints the
	// client-visible handle src.DefragHandle() at dst
	DefragBuffer(src, dst *UsedRegion) error
	// DefragImage records a copy from src.Resource() to dst.Resource() and repoints the
	// client-visible handle src.DefragHandle() at dst
	DefragImage(src, dst *UsedRegion) error
	// DestroyDefragResource destroys a native resource that is no longer referenced by the device
	DestroyDefragResource(resource any, isBuffer bool)
}

// Driver is everything the Allocator needs from a graphics backend
type Driver interface {
	DeviceMemoryDriver
	DefragDriver
}
