package buffer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/fna3d/memutils"
)

// Container is a client-visible buffer whose storage can be discarded without waiting on the GPU.
// Discarding swaps the active handle for one that no command buffer references, so reads already
// queued against the old storage stay valid.
//
// A Container is not synchronized internally.
type Container struct {
	driver       HandleDriver
	isVertexData bool
	size         int

	active  Handle
	handles []Handle
}

// New creates a Container with a single handle of size bytes
func New(driver HandleDriver, isVertexData bool, size int) (*Container, error) {
	if driver == nil {
		return nil, errors.New("attempted to create a buffer container without a driver")
	}

	err := memutils.CheckPositive(size, "size")
	if err != nil {
		return nil, err
	}

	handle, err := driver.CreateBufferHandle(isVertexData, size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer handle of size %d", size)
	}

	return &Container{
		driver:       driver,
		isVertexData: isVertexData,
		size:         size,
		active:       handle,
		handles:      []Handle{handle},
	}, nil
}

// Active returns the handle that writes and binds should use. It returns nil once the Container
// has been destroyed.
func (c *Container) Active() Handle {
	return c.active
}

func (c *Container) Size() int {
	return c.size
}

func (c *Container) IsVertexData() bool {
	return c.isVertexData
}

// HandleCount returns the number of handles this Container has created over its lifetime
func (c *Container) HandleCount() int {
	return len(c.handles)
}

// DiscardActive replaces the active handle with one that no command buffer references, creating
// a new handle if every existing one is in use. It never waits on the GPU.
func (c *Container) DiscardActive() (Handle, error) {
	if c.handles == nil {
		return nil, errors.New("attempted to discard a destroyed buffer container")
	}

	for _, handle := range c.handles {
		if !c.driver.BufferHandleInUse(handle) {
			c.active = handle
			return handle, nil
		}
	}

	handle, err := c.driver.CloneBufferHandle(c.active)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clone buffer handle of size %d", c.size)
	}

	c.handles = append(c.handles, handle)
	c.active = handle

	return handle, nil
}

// Destroy hands every handle this Container has created to the driver for deferred destruction
func (c *Container) Destroy() {
	if c.handles == nil {
		return
	}

	c.driver.MarkBufferHandlesForDestroy(c.handles)
	c.handles = nil
	c.active = nil
}
