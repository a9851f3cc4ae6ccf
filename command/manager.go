package command

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/fna3d/buffer"
	"github.com/vkngwrapper/fna3d/internal/utils"
	"github.com/vkngwrapper/fna3d/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Manager pools command buffers and ties resource lifetimes to their fences. Resources disposed
// while a command buffer might still reference them are destroyed once its fence has signaled.
//
// Command buffers move from inactive to current (BeginRecording), from current to submitted
// (SubmitCurrent), and back to inactive once their fence signals (PerformCleanups or Finish).
//
// Two locks guard the Manager. The command lock covers the command buffers and their disposal
// lists. The transfer lock covers the transfer buffer pool, so acquiring staging memory never waits
// on draw recording. Operations that touch both take the command lock first.
type Manager struct {
	logger *slog.Logger
	driver Driver

	commandLock  utils.OptionalMutex
	transferLock utils.OptionalMutex

	inactive  []*container
	submitted []*container
	current   atomic.Pointer[container]
	defrag    *container

	refLock     utils.OptionalMutex
	boundCounts *swiss.Map[buffer.Handle, int]

	transfers TransferBufferPool
}

func (m *Manager) beginRecordingWithLock() (*container, error) {
	current := m.current.Load()
	if current != nil {
		return current, nil
	}

	var c *container
	if len(m.inactive) > 0 {
		c = m.inactive[len(m.inactive)-1]
		m.inactive = m.inactive[:len(m.inactive)-1]
	} else {
		commandBuffer, err := m.driver.AllocCommandBuffer()
		if err != nil {
			return nil, errors.Wrap(err, "failed to allocate command buffer")
		}
		c = newContainer(commandBuffer)
		m.logger.Debug("Manager::BeginRecording allocated command buffer")
	}

	err := m.driver.BeginRecording(c.commandBuffer)
	if err != nil {
		m.inactive = append(m.inactive, c)
		return nil, errors.Wrap(err, "failed to begin recording command buffer")
	}

	c.recording = true
	m.current.Store(c)

	return c, nil
}

// BeginRecording makes an inactive command buffer current, allocating one if none are inactive.
// It does nothing if a command buffer is already current.
func (m *Manager) BeginRecording() error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	_, err := m.beginRecordingWithLock()
	return err
}

// EndRecording ends recording on the current command buffer. The command buffer stays current
// until SubmitCurrent is called.
func (m *Manager) EndRecording() error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	return m.endRecordingWithLock()
}

func (m *Manager) endRecordingWithLock() error {
	c := m.current.Load()
	if c == nil {
		return ErrNotRecording
	}

	if !c.recording {
		return nil
	}

	err := m.driver.EndRecording(c.commandBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to end recording command buffer")
	}

	c.recording = false
	return nil
}

// LockForRendering acquires the command lock and returns the current command buffer, beginning
// recording if nothing is current. Draw commands are recorded and MarkBufferAsBound is called while
// the lock is held. UnlockFromRendering must be called afterward, unless an error is returned.
func (m *Manager) LockForRendering() (CommandBuffer, error) {
	m.commandLock.Lock()

	c, err := m.beginRecordingWithLock()
	if err != nil {
		m.commandLock.Unlock()
		return nil, err
	}

	if !c.recording {
		m.commandLock.Unlock()
		return nil, errors.Wrap(ErrNotRecording, "the current command buffer has ended recording and must be submitted")
	}

	return c.commandBuffer, nil
}

func (m *Manager) UnlockFromRendering() {
	m.commandLock.Unlock()
}

// LockForTransfer acquires the transfer lock. AcquireTransferBuffer is called, and the staging data
// written, while it is held.
func (m *Manager) LockForTransfer() {
	m.transferLock.Lock()
}

func (m *Manager) UnlockFromTransfer() {
	m.transferLock.Unlock()
}

// LockForSubmit acquires both the command lock and the transfer lock
func (m *Manager) LockForSubmit() {
	m.commandLock.Lock()
	m.transferLock.Lock()
}

func (m *Manager) UnlockFromSubmit() {
	m.transferLock.Unlock()
	m.commandLock.Unlock()
}

// AcquireTransferBuffer reserves requiredSize bytes of staging memory for the current command buffer
// and returns the buffer along with the offset of the reservation. It must be called between
// LockForTransfer and UnlockFromTransfer, while a command buffer is current.
//
// The reservation is returned to the pool once the current command buffer has executed.
func (m *Manager) AcquireTransferBuffer(requiredSize int, alignment uint) (*TransferBuffer, int, error) {
	err := memutils.CheckPositive(requiredSize, "requiredSize")
	if err != nil {
		return nil, 0, err
	}

	if alignment == 0 {
		alignment = 1
	}
	err = memutils.CheckPow2(alignment, "alignment")
	if err != nil {
		return nil, 0, err
	}

	c := m.current.Load()
	if c == nil {
		return nil, 0, ErrNotRecording
	}

	return m.transfers.acquire(c, requiredSize, alignment)
}

// SubmitCurrent ends recording on the current command buffer if needed and submits it. It does
// nothing if no command buffer is current.
func (m *Manager) SubmitCurrent() error {
	m.logger.Debug("Manager::SubmitCurrent")

	m.LockForSubmit()
	defer m.UnlockFromSubmit()

	c := m.current.Load()
	if c == nil {
		return nil
	}

	err := m.endRecordingWithLock()
	if err != nil {
		return err
	}

	err = m.driver.Submit(c.commandBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to submit command buffer")
	}

	m.submitted = append(m.submitted, c)
	m.current.Store(nil)

	return nil
}

func (m *Manager) disposalTargetWithLock() (*container, error) {
	c, err := m.beginRecordingWithLock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to find a command buffer to hold disposed resources")
	}

	return c, nil
}

// AddDisposeTexture destroys texture once the current command buffer has executed
func (m *Manager) AddDisposeTexture(texture Texture) error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	c, err := m.disposalTargetWithLock()
	if err != nil {
		return err
	}

	c.texturesToDestroy = append(c.texturesToDestroy, texture)
	return nil
}

// AddDisposeRenderbuffer destroys renderbuffer once the current command buffer has executed
func (m *Manager) AddDisposeRenderbuffer(renderbuffer Renderbuffer) error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	c, err := m.disposalTargetWithLock()
	if err != nil {
		return err
	}

	c.renderbuffersToDestroy = append(c.renderbuffersToDestroy, renderbuffer)
	return nil
}

// AddDisposeEffect destroys effect once the current command buffer has executed
func (m *Manager) AddDisposeEffect(effect Effect) error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	c, err := m.disposalTargetWithLock()
	if err != nil {
		return err
	}

	c.effectsToDestroy = append(c.effectsToDestroy, effect)
	return nil
}

// AddDisposeBuffers destroys every handle in handles once the current command buffer has executed
func (m *Manager) AddDisposeBuffers(handles []buffer.Handle) error {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	c, err := m.disposalTargetWithLock()
	if err != nil {
		return err
	}

	c.buffersToDestroy = append(c.buffersToDestroy, handles...)
	return nil
}

// MarkBufferAsBound records that the current command buffer references handle. A handle bound
// several times by one command buffer is only referenced once. It must be called between
// LockForRendering and UnlockFromRendering.
func (m *Manager) MarkBufferAsBound(handle buffer.Handle) error {
	c := m.current.Load()
	if c == nil {
		return ErrNotRecording
	}

	if !c.markBound(handle) {
		return nil
	}

	m.driver.IncBufferRef(handle)

	m.refLock.Lock()
	defer m.refLock.Unlock()

	count, _ := m.boundCounts.Get(handle)
	m.boundCounts.Put(handle, count+1)

	return nil
}

// IsBufferBound returns true if a current or submitted command buffer that has not been cleaned up
// references handle
func (m *Manager) IsBufferBound(handle buffer.Handle) bool {
	m.refLock.Lock()
	defer m.refLock.Unlock()

	count, ok := m.boundCounts.Get(handle)
	return ok && count > 0
}

func (m *Manager) releaseBoundWithLock(handle buffer.Handle) {
	m.refLock.Lock()
	defer m.refLock.Unlock()

	count, ok := m.boundCounts.Get(handle)
	if !ok {
		return
	}

	if count <= 1 {
		m.boundCounts.Delete(handle)
		return
	}
	m.boundCounts.Put(handle, count-1)
}

// ClearDestroyedBuffer drops every reference to handle held by a current or submitted command
// buffer, so cleaning them up will not touch it again
func (m *Manager) ClearDestroyedBuffer(handle buffer.Handle) {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	m.clearDestroyedBufferWithLock(handle)
}

func (m *Manager) clearDestroyedBufferWithLock(handle buffer.Handle) {
	cleared := false

	current := m.current.Load()
	if current != nil && current.clearBound(handle) {
		cleared = true
	}

	for _, c := range m.submitted {
		if c.clearBound(handle) {
			cleared = true
		}
	}

	if cleared {
		m.logger.LogAttrs(context.Background(), slog.LevelWarn, "destroyed a buffer still referenced by a command buffer")
	}

	m.refLock.Lock()
	defer m.refLock.Unlock()

	m.boundCounts.Delete(handle)
}

// cleanWithLock releases everything held by a command buffer whose fence has signaled. The command
// lock and the transfer lock must be held.
func (m *Manager) cleanWithLock(c *container) error {
	for _, handle := range c.boundBuffers {
		if handle == nil {
			continue
		}

		c.boundIndex.Delete(handle)
		m.driver.DecBufferRef(handle)
		m.releaseBoundWithLock(handle)
	}
	c.boundBuffers = c.boundBuffers[:0]

	m.transfers.release(c)

	for _, texture := range c.texturesToDestroy {
		m.driver.DestroyTexture(texture)
	}
	c.texturesToDestroy = c.texturesToDestroy[:0]

	for _, handle := range c.buffersToDestroy {
		m.clearDestroyedBufferWithLock(handle)
		m.driver.DestroyBuffer(handle)
	}
	c.buffersToDestroy = c.buffersToDestroy[:0]

	for _, renderbuffer := range c.renderbuffersToDestroy {
		m.driver.DestroyRenderbuffer(renderbuffer)
	}
	c.renderbuffersToDestroy = c.renderbuffersToDestroy[:0]

	for _, effect := range c.effectsToDestroy {
		m.driver.DestroyEffect(effect)
	}
	c.effectsToDestroy = c.effectsToDestroy[:0]

	err := m.driver.Reset(c.commandBuffer)
	if err != nil {
		// A command buffer that cannot be reset cannot be reused
		m.driver.FreeCommandBuffer(c.commandBuffer)
		return errors.Wrap(err, "failed to reset command buffer")
	}

	m.inactive = append(m.inactive, c)
	return nil
}

// PerformCleanups cleans up every submitted command buffer whose fence has signaled, without
// blocking. It returns true if any command buffer was cleaned up.
func (m *Manager) PerformCleanups() (bool, error) {
	m.LockForSubmit()
	defer m.UnlockFromSubmit()

	cleaned := false
	var err error

	for i := len(m.submitted) - 1; i >= 0; i-- {
		c := m.submitted[i]
		if !m.driver.QueryFence(c.commandBuffer) {
			continue
		}

		err = errors.CombineErrors(err, m.cleanWithLock(c))
		m.submitted = slices.Delete(m.submitted, i, i+1)
		cleaned = true
	}

	return cleaned, err
}

// Finish blocks until every submitted command buffer has executed, then cleans them up in reverse
// submission order
func (m *Manager) Finish() error {
	m.logger.Debug("Manager::Finish")

	m.LockForSubmit()
	defer m.UnlockFromSubmit()

	return m.finishWithLock()
}

func (m *Manager) finishWithLock() error {
	if len(m.submitted) == 0 {
		return nil
	}

	commandBuffers := make([]CommandBuffer, 0, len(m.submitted))
	for _, c := range m.submitted {
		commandBuffers = append(commandBuffers, c.commandBuffer)
	}

	err := m.driver.WaitForFences(commandBuffers)
	if err != nil {
		return errors.Wrapf(err, "failed to wait on %d command buffers", len(commandBuffers))
	}

	for i := len(m.submitted) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, m.cleanWithLock(m.submitted[i]))
	}
	m.submitted = m.submitted[:0]

	return err
}

// LockForDefrag acquires both locks and begins recording the reserved defragmentation command
// buffer, which is never current and never pooled. UnlockFromDefrag must be called afterward,
// unless an error is returned.
func (m *Manager) LockForDefrag() (CommandBuffer, error) {
	m.LockForSubmit()

	if m.defrag == nil {
		commandBuffer, err := m.driver.AllocCommandBuffer()
		if err != nil {
			m.UnlockFromSubmit()
			return nil, errors.Wrap(err, "failed to allocate defragmentation command buffer")
		}
		m.defrag = newContainer(commandBuffer)
	}

	err := m.driver.BeginRecording(m.defrag.commandBuffer)
	if err != nil {
		m.UnlockFromSubmit()
		return nil, errors.Wrap(err, "failed to begin recording defragmentation command buffer")
	}
	m.defrag.recording = true

	return m.defrag.commandBuffer, nil
}

// UnlockFromDefrag submits the defragmentation command buffer, waits for it to execute, and
// releases both locks
func (m *Manager) UnlockFromDefrag() error {
	defer m.UnlockFromSubmit()

	commandBuffer := m.defrag.commandBuffer
	m.defrag.recording = false

	err := m.driver.EndRecording(commandBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to end recording defragmentation command buffer")
	}

	err = m.driver.Submit(commandBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to submit defragmentation command buffer")
	}

	err = m.driver.WaitForFences([]CommandBuffer{commandBuffer})
	if err != nil {
		return errors.Wrap(err, "failed to wait on defragmentation command buffer")
	}

	err = m.driver.Reset(commandBuffer)
	if err != nil {
		m.driver.FreeCommandBuffer(commandBuffer)
		m.defrag = nil
		return errors.Wrap(err, "failed to reset defragmentation command buffer")
	}

	return nil
}

// Destroy submits the current command buffer, waits for every submitted command buffer, and frees
// all command buffers and transfer buffers. The Manager cannot be used afterward.
func (m *Manager) Destroy() error {
	m.logger.Debug("Manager::Destroy")

	err := m.SubmitCurrent()
	if err != nil {
		return err
	}

	m.LockForSubmit()
	defer m.UnlockFromSubmit()

	err = m.finishWithLock()

	for _, c := range m.inactive {
		m.driver.FreeCommandBuffer(c.commandBuffer)
	}
	m.inactive = nil

	if m.defrag != nil {
		m.driver.FreeCommandBuffer(m.defrag.commandBuffer)
		m.defrag = nil
	}

	m.transfers.destroy()

	return err
}

// CurrentCommandBuffer returns the command buffer that is currently recording, or nil
func (m *Manager) CurrentCommandBuffer() CommandBuffer {
	c := m.current.Load()
	if c == nil {
		return nil
	}
	return c.commandBuffer
}

// InactiveCount returns the number of pooled command buffers that are ready to record
func (m *Manager) InactiveCount() int {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	return len(m.inactive)
}

// SubmittedCount returns the number of submitted command buffers that have not been cleaned up
func (m *Manager) SubmittedCount() int {
	m.commandLock.Lock()
	defer m.commandLock.Unlock()

	return len(m.submitted)
}

// TransferBufferPool returns the pool of unclaimed transfer buffers. It must only be inspected
// while the transfer lock is held.
func (m *Manager) TransferBufferPool() *TransferBufferPool {
	return &m.transfers
}
