package command

import (
	"github.com/vkngwrapper/fna3d/buffer"
)

// CommandBuffer is a backend command buffer along with its fence
type CommandBuffer any

type Texture any
type Renderbuffer any
type Effect any

// Driver is the backend that records, submits, and fences command buffers and destroys the
// resources they referenced
type Driver interface {
	AllocCommandBuffer() (CommandBuffer, error)
	FreeCommandBuffer(commandBuffer CommandBuffer)

	BeginRecording(commandBuffer CommandBuffer) error
	EndRecording(commandBuffer CommandBuffer) error
	// Reset returns a command buffer whose fence has signaled to the initial state
	Reset(commandBuffer CommandBuffer) error
	// Submit queues a command buffer for execution and arms its fence
	Submit(commandBuffer CommandBuffer) error

	// QueryFence returns true if the command buffer's fence has signaled
	QueryFence(commandBuffer CommandBuffer) bool
	// WaitForFences blocks until the fences of every command buffer in commandBuffers have signaled
	WaitForFences(commandBuffers []CommandBuffer) error

	// CreateTransferBuffer creates a host-visible staging buffer of at least size bytes
	CreateTransferBuffer(size int) (buffer.Handle, error)
	DestroyTransferBuffer(transferBuffer buffer.Handle)
	GetBufferSize(handle buffer.Handle) int

	// IncBufferRef and DecBufferRef maintain the backend's reference count of a buffer bound by a
	// command buffer
	IncBufferRef(handle buffer.Handle)
	DecBufferRef(handle buffer.Handle)

	DestroyTexture(texture Texture)
	DestroyBuffer(handle buffer.Handle)
	DestroyRenderbuffer(renderbuffer Renderbuffer)
	DestroyEffect(effect Effect)
}
