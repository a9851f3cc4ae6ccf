package defrag

import (
	"fmt"
	"math"
)

// CounterStatus is the verdict of PassContext.CheckCounters for a single relocation
type CounterStatus uint32

const (
	// CounterPass indicates the relocation fits within the pass budget
	CounterPass CounterStatus = iota
	// CounterIgnore indicates the relocation would exceed the byte budget, but smaller
	// relocations may still fit
	CounterIgnore
	// CounterEnd indicates the pass should end now
	CounterEnd
)

var counterStatusMapping = map[CounterStatus]string{
	CounterPass:   "CounterPass",
	CounterIgnore: "CounterIgnore",
	CounterEnd:    "CounterEnd",
}

func (s CounterStatus) String() string {
	return counterStatusMapping[s]
}

// PassContext is an object used to track data for the current defragmentation
// pass across multiple relocations
type PassContext struct {
	// MaxPassBytes is the maximum number of bytes to relocate in each pass. 0 means no limit.
	MaxPassBytes int
	// MaxPassAllocations is the maximum number of relocations to perform in each pass. 0 means
	// no limit.
	MaxPassAllocations int
	// Stats contains statistics for the current pass, such as bytes moved,
	// regions relocated, etc.
	Stats         DefragmentationStats
	ignoredAllocs int
}

const maxRegionsToIgnore = 16

// Reset prepares the context for a new pass, keeping its limits
func (p *PassContext) Reset() {
	p.Stats = DefragmentationStats{}
	p.ignoredAllocs = 0
}

func (p *PassContext) maxBytes() int {
	if p.MaxPassBytes <= 0 {
		return math.MaxInt
	}
	return p.MaxPassBytes
}

func (p *PassContext) maxAllocations() int {
	if p.MaxPassAllocations <= 0 {
		return math.MaxInt
	}
	return p.MaxPassAllocations
}

// CheckCounters reports whether a relocation of the provided size still fits in this pass
func (p *PassContext) CheckCounters(bytes int) CounterStatus {
	if p.Stats.RegionsMoved >= p.maxAllocations() {
		return CounterEnd
	}

	// Ignore relocation if it will exceed max size for copy
	if p.Stats.BytesMoved+bytes > p.maxBytes() {
		p.ignoredAllocs++
		if p.ignoredAllocs < maxRegionsToIgnore {
			return CounterIgnore
		}
		return CounterEnd
	}

	p.ignoredAllocs = 0
	return CounterPass
}

// IncrementCounters records a completed relocation and returns true if the pass has reached
// one of its limits
func (p *PassContext) IncrementCounters(bytes int) bool {
	p.Stats.BytesMoved += bytes
	p.Stats.RegionsMoved++

	if p.Stats.RegionsMoved > p.maxAllocations() {
		panic(fmt.Sprintf("somehow passed maximum pass thresholds: bytes %d, regions %d", p.Stats.BytesMoved, p.Stats.RegionsMoved))
	}

	// A single region larger than MaxPassBytes is still allowed to move as the first
	// relocation of a pass, so only the region count is a hard limit
	return p.Stats.RegionsMoved >= p.maxAllocations() || p.Stats.BytesMoved >= p.maxBytes()
}
