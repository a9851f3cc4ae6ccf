package command

import (
	"context"

	"github.com/vkngwrapper/fna3d/buffer"
	"golang.org/x/exp/slog"
)

type bufferHandleDriver struct {
	buffer.HandleCreator
	manager *Manager
}

// BufferHandleDriver returns a buffer.HandleDriver that creates handles with creator, defers their
// destruction to this Manager's command buffers, and reports them in use while a command buffer
// has bound them
func (m *Manager) BufferHandleDriver(creator buffer.HandleCreator) buffer.HandleDriver {
	return &bufferHandleDriver{
		HandleCreator: creator,
		manager:       m,
	}
}

func (d *bufferHandleDriver) MarkBufferHandlesForDestroy(handles []buffer.Handle) {
	err := d.manager.AddDisposeBuffers(handles)
	if err != nil {
		// Destroying now could free a buffer the GPU is reading, so the handles are leaked instead
		d.manager.logger.LogAttrs(context.Background(), slog.LevelError, "failed to defer buffer destruction",
			slog.Int("HandleCount", len(handles)),
			slog.Any("Error", err),
		)
	}
}

func (d *bufferHandleDriver) BufferHandleInUse(handle buffer.Handle) bool {
	return d.manager.IsBufferBound(handle)
}
