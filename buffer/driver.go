package buffer

// Handle is a backend buffer object. Handles are compared by identity, so backends should
// use pointers or other comparable values.
type Handle any

// HandleCreator creates the native buffers backing a Container
type HandleCreator interface {
	// CreateBufferHandle creates a new buffer of size bytes
	CreateBufferHandle(isVertexData bool, size int) (Handle, error)
	// CloneBufferHandle creates a new buffer with the same size and usage as handle. The contents
	// are not copied.
	CloneBufferHandle(handle Handle) (Handle, error)
}

// HandleDriver is the backend contract of a Container
type HandleDriver interface {
	HandleCreator

	// MarkBufferHandlesForDestroy queues handles to be destroyed once no submitted command
	// buffer can reference them
	MarkBufferHandlesForDestroy(handles []Handle)
	// BufferHandleInUse returns true if a recording or submitted command buffer references handle
	BufferHandleInUse(handle Handle) bool
}
