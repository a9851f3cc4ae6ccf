package defrag

// DefragmentationStats contains basic metrics for defragmentation over time
type DefragmentationStats struct {
	// BytesMoved is the number of bytes that have been successfully relocated
	BytesMoved int
	// BytesFreed is the number of bytes of device memory released because defragmentation emptied
	// an allocation and the sweep chose to free it
	BytesFreed int
	// RegionsMoved is the number of successful relocations
	RegionsMoved int
	// AllocationsFreed is the number of device memory allocations freed as a consequence of
	// relocating regions out of them
	AllocationsFreed int
	// PassesCompleted is the number of fragmented allocations that were fully drained
	PassesCompleted int
	// PassesFailed is the number of passes aborted by a driver failure
	PassesFailed int
}

func (s *DefragmentationStats) Add(stats DefragmentationStats) {
	s.BytesMoved += stats.BytesMoved
	s.BytesFreed += stats.BytesFreed
	s.RegionsMoved += stats.RegionsMoved
	s.AllocationsFreed += stats.AllocationsFreed
	s.PassesCompleted += stats.PassesCompleted
	s.PassesFailed += stats.PassesFailed
}
