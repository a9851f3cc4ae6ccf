package command

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/fna3d/buffer"
	"github.com/vkngwrapper/fna3d/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

const (
	// DefaultStartingTransferSize is the size of the first slow transfer buffer. Larger slow buffers
	// are this size doubled until they fit their first request.
	DefaultStartingTransferSize int = 8_000_000
	// DefaultFastTransferSize is the size of the single fast transfer buffer
	DefaultFastTransferSize int = 64_000_000
)

// TransferBuffer is a host-visible staging buffer. Writes are sub-allocated linearly from offset 0
// until the command buffer that claimed it has executed.
type TransferBuffer struct {
	handle buffer.Handle
	size   int
	offset int
	fast   bool
}

func (b *TransferBuffer) Handle() buffer.Handle {
	return b.handle
}

func (b *TransferBuffer) Size() int {
	return b.size
}

// Offset returns the write cursor: the first byte not claimed by a previous acquisition
func (b *TransferBuffer) Offset() int {
	return b.offset
}

func (b *TransferBuffer) IsFast() bool {
	return b.fast
}

func (b *TransferBuffer) fits(size int, alignment uint) bool {
	offset := memutils.AlignUp(b.offset, alignment)
	return offset <= b.size && size <= b.size-offset
}

// claim reserves size bytes at alignment and returns the offset of the reservation, or -1 if
// they do not fit
func (b *TransferBuffer) claim(size int, alignment uint) int {
	memutils.DebugCheckPow2(alignment, "alignment")

	if !b.fits(size, alignment) {
		return -1
	}

	offset := memutils.AlignUp(b.offset, alignment)
	b.offset = offset + size
	return offset
}

// TransferBufferPool holds the staging buffers that are not claimed by any command buffer
type TransferBufferPool struct {
	logger *slog.Logger
	driver Driver

	startingSize int
	fastSize     int

	fast          *TransferBuffer
	fastAvailable bool
	slow          []*TransferBuffer
}

func (p *TransferBufferPool) init(logger *slog.Logger, driver Driver, startingSize, fastSize int) error {
	p.logger = logger
	p.driver = driver
	p.startingSize = startingSize
	p.fastSize = fastSize

	var err error
	p.fast, err = p.create(fastSize)
	if err != nil {
		return err
	}
	p.fast.fast = true
	p.fastAvailable = true

	slow, err := p.create(startingSize)
	if err != nil {
		p.driver.DestroyTransferBuffer(p.fast.handle)
		p.fast = nil
		return err
	}
	p.slow = append(p.slow, slow)

	return nil
}

func (p *TransferBufferPool) create(size int) (*TransferBuffer, error) {
	handle, err := p.driver.CreateTransferBuffer(size)
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelError, "failed to create transfer buffer",
			slog.Int("Size", size),
			slog.Any("Error", err),
		)
		return nil, errors.Mark(errors.Wrapf(err, "failed to create transfer buffer of size %d", size), ErrTransferBufferCreation)
	}

	return &TransferBuffer{
		handle: handle,
		size:   p.driver.GetBufferSize(handle),
	}, nil
}

// acquire claims requiredSize bytes for c. Buffers already claimed by c are preferred, then the
// fast buffer, then any pooled slow buffer, and finally a new slow buffer.
func (p *TransferBufferPool) acquire(c *container, requiredSize int, alignment uint) (*TransferBuffer, int, error) {
	for _, transferBuffer := range c.transferBuffers {
		offset := transferBuffer.claim(requiredSize, alignment)
		if offset >= 0 {
			return transferBuffer, offset, nil
		}
	}

	if p.fastAvailable && requiredSize < p.fastSize {
		p.fastAvailable = false
		p.fast.offset = 0
		return p.claimFor(c, p.fast, requiredSize, alignment)
	}

	for i, transferBuffer := range p.slow {
		if transferBuffer.fits(requiredSize, alignment) {
			p.slow = slices.Delete(p.slow, i, i+1)
			return p.claimFor(c, transferBuffer, requiredSize, alignment)
		}
	}

	size := memutils.DoubleUntil(p.startingSize, requiredSize)
	p.logger.Debug("TransferBufferPool::acquire creating slow buffer", slog.Int("Size", size))

	transferBuffer, err := p.create(size)
	if err != nil {
		return nil, 0, err
	}

	return p.claimFor(c, transferBuffer, requiredSize, alignment)
}

func (p *TransferBufferPool) claimFor(c *container, transferBuffer *TransferBuffer, requiredSize int, alignment uint) (*TransferBuffer, int, error) {
	c.transferBuffers = append(c.transferBuffers, transferBuffer)

	offset := transferBuffer.claim(requiredSize, alignment)
	if offset < 0 {
		// The backend returned a buffer smaller than requested
		return nil, 0, errors.Newf("transfer buffer of size %d cannot hold %d bytes", transferBuffer.size, requiredSize)
	}

	return transferBuffer, offset, nil
}

// release returns the transfer buffers claimed by c to the pool
func (p *TransferBufferPool) release(c *container) {
	for _, transferBuffer := range c.transferBuffers {
		transferBuffer.offset = 0

		if transferBuffer.fast {
			p.fastAvailable = true
		} else {
			p.slow = append(p.slow, transferBuffer)
		}
	}

	c.transferBuffers = c.transferBuffers[:0]
}

func (p *TransferBufferPool) destroy() {
	if p.fast != nil {
		p.driver.DestroyTransferBuffer(p.fast.handle)
		p.fast = nil
		p.fastAvailable = false
	}

	for _, transferBuffer := range p.slow {
		p.driver.DestroyTransferBuffer(transferBuffer.handle)
	}
	p.slow = nil
}

// AvailableSlowBuffers returns the number of pooled slow buffers
func (p *TransferBufferPool) AvailableSlowBuffers() int {
	return len(p.slow)
}

// FastBufferAvailable returns true if no command buffer has claimed the fast buffer
func (p *TransferBufferPool) FastBufferAvailable() bool {
	return p.fastAvailable
}
