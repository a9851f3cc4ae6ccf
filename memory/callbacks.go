package memory

type AllocateDeviceMemoryCallback func(
	allocator *Allocator,
	subAllocatorIndex int,
	memory DeviceMemory,
	size int,
	userData interface{},
)

type FreeDeviceMemoryCallback func(
	allocator *Allocator,
	subAllocatorIndex int,
	memory DeviceMemory,
	size int,
	userData interface{},
)

// MemoryCallbackOptions are hooks that are called whenever the allocator allocates or frees
// device memory
type MemoryCallbackOptions struct {
	Allocate AllocateDeviceMemoryCallback
	Free     FreeDeviceMemoryCallback
	UserData interface{}
}

type memoryCallbacks struct {
	Callbacks *MemoryCallbackOptions
	Allocator *Allocator
}

func (c *memoryCallbacks) Allocate(
	subAllocatorIndex int,
	memory DeviceMemory,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Allocate != nil {
		c.Callbacks.Allocate(c.Allocator, subAllocatorIndex, memory, size, c.Callbacks.UserData)
	}
}

func (c *memoryCallbacks) Free(
	subAllocatorIndex int,
	memory DeviceMemory,
	size int,
) {
	if c.Callbacks != nil && c.Callbacks.Free != nil {
		c.Callbacks.Free(c.Allocator, subAllocatorIndex, memory, size, c.Callbacks.UserData)
	}
}
