package command

import (
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/fna3d/buffer"
)

// container is one native command buffer plus everything that must outlive its execution
type container struct {
	commandBuffer CommandBuffer
	recording     bool

	transferBuffers []*TransferBuffer

	// boundBuffers keeps bind order for release; boundIndex maps a buffer to its slot
	boundBuffers []buffer.Handle
	boundIndex   *swiss.Map[buffer.Handle, int]

	texturesToDestroy      []Texture
	buffersToDestroy       []buffer.Handle
	renderbuffersToDestroy []Renderbuffer
	effectsToDestroy       []Effect
}

func newContainer(commandBuffer CommandBuffer) *container {
	return &container{
		commandBuffer: commandBuffer,
		boundIndex:    swiss.NewMap[buffer.Handle, int](16),
	}
}

// markBound returns true if handle was not already bound by this container
func (c *container) markBound(handle buffer.Handle) bool {
	_, ok := c.boundIndex.Get(handle)
	if ok {
		return false
	}

	c.boundIndex.Put(handle, len(c.boundBuffers))
	c.boundBuffers = append(c.boundBuffers, handle)
	return true
}

func (c *container) isBound(handle buffer.Handle) bool {
	_, ok := c.boundIndex.Get(handle)
	return ok
}

// clearBound forgets handle without releasing its reference. It returns true if handle was bound.
func (c *container) clearBound(handle buffer.Handle) bool {
	index, ok := c.boundIndex.Get(handle)
	if !ok {
		return false
	}

	c.boundBuffers[index] = nil
	c.boundIndex.Delete(handle)
	return true
}
