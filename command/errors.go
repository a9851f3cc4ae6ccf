package command

import "github.com/cockroachdb/errors"

// ErrTransferBufferCreation is marked on errors returned when the driver could not create a
// staging buffer
var ErrTransferBufferCreation = errors.New("failed to create transfer buffer")

// ErrNotRecording is returned when an operation needs a current command buffer and there is none
var ErrNotRecording = errors.New("no command buffer is recording")
