package memory

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfDeviceMemory marks errors from BindResource where new device memory could not be allocated
	ErrOutOfDeviceMemory = errors.New("out of device memory")
	// ErrBindFailed marks errors from BindResource where memory was found, but the backend failed
	// to bind the resource to it
	ErrBindFailed = errors.New("failed to bind resource memory")
	// ErrDefragmentationFailed marks errors that aborted a defragmentation pass
	ErrDefragmentationFailed = errors.New("defragmentation pass failed")
	// ErrRegionRelocated marks errors from Map and Unmap on a region that defragmentation has moved
	// away from. RegionForResource returns the resource's current region.
	ErrRegionRelocated = errors.New("region has been relocated")
)
