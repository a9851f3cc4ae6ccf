package memory

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type fakeMemory struct {
	id   int
	size int
	host []byte
}

type fakeResource struct {
	id        int
	size      int
	memory    *fakeMemory
	offset    int
	destroyed bool
}

// fakeHandle stands in for the client-visible buffer or texture object
type fakeHandle struct {
	resource *fakeResource
}

type fakeDriver struct {
	t *testing.T

	nextID     int
	live       map[*fakeMemory]struct{}
	allocSizes []int
	events     []string

	failAlloc     bool
	failBindAfter int
	bindCount     int
	failCopy      bool
	failEnd       bool
	recording     bool
	onCreate      func(src *UsedRegion)
}

func newFakeDriver(t *testing.T) *fakeDriver {
	return &fakeDriver{
		t:             t,
		live:          make(map[*fakeMemory]struct{}),
		failBindAfter: -1,
	}
}

func (d *fakeDriver) newResource(size int) *fakeResource {
	d.nextID++
	return &fakeResource{id: d.nextID, size: size}
}

func (d *fakeDriver) AllocDeviceMemory(info AllocateInfo) (DeviceMemory, unsafe.Pointer, common.VkResult, error) {
	if d.failAlloc {
		return nil, nil, core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()
	}

	d.nextID++
	mem := &fakeMemory{id: d.nextID, size: info.Size}
	d.live[mem] = struct{}{}
	d.allocSizes = append(d.allocSizes, info.Size)

	var mapped unsafe.Pointer
	if info.HostVisible {
		mem.host = make([]byte, info.Size)
		mapped = unsafe.Pointer(&mem.host[0])
	}

	return mem, mapped, core1_0.VKSuccess, nil
}

func (d *fakeDriver) FreeDeviceMemory(memory DeviceMemory, size int) {
	mem := memory.(*fakeMemory)
	_, ok := d.live[mem]
	require.True(d.t, ok, "freed device memory that is not live")
	require.Equal(d.t, mem.size, size)
	delete(d.live, mem)
}

func (d *fakeDriver) bind(resource any, memory DeviceMemory, offset int) (common.VkResult, error) {
	d.bindCount++
	if d.failBindAfter >= 0 && d.bindCount > d.failBindAfter {
		return core1_0.VKErrorOutOfDeviceMemory, errors.New("bind rejected")
	}

	res := resource.(*fakeResource)
	res.memory = memory.(*fakeMemory)
	res.offset = offset
	return core1_0.VKSuccess, nil
}

func (d *fakeDriver) BindBufferMemory(buffer any, memory DeviceMemory, offset int) (common.VkResult, error) {
	return d.bind(buffer, memory, offset)
}

func (d *fakeDriver) BindImageMemory(image any, memory DeviceMemory, offset int) (common.VkResult, error) {
	return d.bind(image, memory, offset)
}

func (d *fakeDriver) BeginDefragCommands() error {
	require.False(d.t, d.recording)
	d.recording = true
	d.events = append(d.events, "begin")
	return nil
}

func (d *fakeDriver) EndDefragCommands() error {
	require.True(d.t, d.recording)
	d.recording = false
	if d.failEnd {
		d.events = append(d.events, "end-failed")
		return errors.New("queue lost")
	}
	d.events = append(d.events, "end")
	return nil
}

func (d *fakeDriver) CreateDefragResource(src *UsedRegion) (any, common.VkResult, error) {
	if d.onCreate != nil {
		d.onCreate(src)
	}
	return d.newResource(src.Resource().(*fakeResource).size), core1_0.VKSuccess, nil
}

func (d *fakeDriver) copy(src, dst *UsedRegion) error {
	require.True(d.t, d.recording, "copy recorded outside of defrag commands")
	if d.failCopy {
		return errors.New("copy rejected")
	}

	handle := src.DefragHandle().(*fakeHandle)
	require.Same(d.t, src.Resource(), handle.resource)
	handle.resource = dst.Resource().(*fakeResource)
	d.events = append(d.events, "copy")
	return nil
}

func (d *fakeDriver) DefragBuffer(src, dst *UsedRegion) error {
	return d.copy(src, dst)
}

func (d *fakeDriver) DefragImage(src, dst *UsedRegion) error {
	return d.copy(src, dst)
}

func (d *fakeDriver) DestroyDefragResource(resource any, isBuffer bool) {
	res := resource.(*fakeResource)
	require.False(d.t, res.destroyed, "resource destroyed twice")
	res.destroyed = true
	d.events = append(d.events, "destroy")
}

func newTestAllocator(t *testing.T, driver Driver, options CreateOptions) *Allocator {
	if options.SubAllocatorCount == 0 {
		options.SubAllocatorCount = 1
	}

	allocator, err := New(nil, driver, options)
	require.NoError(t, err)
	return allocator
}

type boundResource struct {
	handle *fakeHandle
	region *UsedRegion
}

func bindBuffer(t *testing.T, allocator *Allocator, driver *fakeDriver, size int, alignment uint) boundResource {
	resource := driver.newResource(size)
	handle := &fakeHandle{resource: resource}

	region, res, err := allocator.BindResource(BindInfo{
		RequiredSize:      size,
		RequiredAlignment: alignment,
		ResourceSize:      size,
		Resource:          resource,
		DefragHandle:      handle,
	})
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.NoError(t, allocator.Validate())

	return boundResource{handle: handle, region: region}
}

func freeBytes(allocator *Allocator) int {
	total := 0
	for _, sub := range allocator.subAllocators {
		for _, alloc := range sub.allocations {
			if alloc != nil {
				total += alloc.freeBytes()
			}
		}
	}
	return total
}
