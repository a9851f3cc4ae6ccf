package memory

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/fna3d/internal/utils"
	"github.com/vkngwrapper/fna3d/memutils"
	"github.com/vkngwrapper/fna3d/memutils/defrag"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that this allocator will not be synchronized internally.
	// The consumer must guarantee it is used from only one thread at a time or is synchronized by
	// some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateDisableDefragmentation turns Tick into a sweep only. Defragment can still be called directly.
	CreateDisableDefragmentation
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateDisableDefragmentation.Register("CreateDisableDefragmentation")
}

const (
	// DefaultStartingAllocationSize is the size of the first non-dedicated allocation of each sub-allocator
	DefaultStartingAllocationSize int = 64_000_000
	// DefaultAllocationIncrement is the granularity of allocations made for requests larger than
	// the next allocation size
	DefaultAllocationIncrement int = 16_000_000
	// DefaultMaxAllocationSize caps the growth of the next allocation size
	DefaultMaxAllocationSize int = 256_000_000
)

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// SubAllocatorCount is the number of memory categories, usually the number of device memory types.
	// It must be at least 1.
	SubAllocatorCount int

	// StartingAllocationSize is the size of the first non-dedicated allocation of each sub-allocator.
	// Each following allocation doubles it, up to MaxAllocationSize.
	StartingAllocationSize int
	// AllocationIncrement is the granularity used when a single request is larger than the
	// next allocation size
	AllocationIncrement int
	// MaxAllocationSize caps the growth of non-dedicated allocations
	MaxAllocationSize int

	// DefragFrameDelay is the number of calls to Tick that must pass without a free before
	// defragmentation runs
	DefragFrameDelay int
	// MaxPassBytes bounds the bytes relocated by a single call to Defragment. 0 means no limit.
	MaxPassBytes int
	// MaxPassRegions bounds the regions relocated by a single call to Defragment. 0 means no limit.
	MaxPassRegions int

	// MemoryCallbackOptions is an optional set of callbacks that will be executed when device memory
	// is allocated or freed by this allocator
	MemoryCallbackOptions *MemoryCallbackOptions
}

// New creates an Allocator that requests device memory from the provided driver.
//
// logger - may be nil, in which case nothing is logged
//
// driver - the backend used to allocate memory, bind resources, and relocate them during defragmentation
func New(logger *slog.Logger, driver Driver, options CreateOptions) (*Allocator, error) {
	if driver == nil {
		return nil, errors.New("attempted to create an allocator without a driver")
	}

	err := memutils.CheckPositive(options.SubAllocatorCount, "SubAllocatorCount")
	if err != nil {
		return nil, err
	}

	if options.StartingAllocationSize == 0 {
		options.StartingAllocationSize = DefaultStartingAllocationSize
	}
	if options.AllocationIncrement == 0 {
		options.AllocationIncrement = DefaultAllocationIncrement
	}
	if options.MaxAllocationSize == 0 {
		options.MaxAllocationSize = DefaultMaxAllocationSize
	}
	if options.DefragFrameDelay == 0 {
		options.DefragFrameDelay = defrag.DefaultFrameDelay
	}

	if options.StartingAllocationSize < 0 || options.AllocationIncrement < 0 || options.MaxAllocationSize < 0 {
		return nil, errors.Newf("allocation sizes may not be negative: starting %d, increment %d, max %d",
			options.StartingAllocationSize, options.AllocationIncrement, options.MaxAllocationSize)
	}

	if options.MaxAllocationSize < options.StartingAllocationSize {
		return nil, errors.Newf("MaxAllocationSize %d is smaller than StartingAllocationSize %d",
			options.MaxAllocationSize, options.StartingAllocationSize)
	}

	logger = utils.LoggerOrDiscard(logger)

	allocator := &Allocator{
		logger:                 logger,
		driver:                 driver,
		createFlags:            options.Flags,
		mutex:                  utils.OptionalMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		allocationIncrement:    options.AllocationIncrement,
		maxAllocationSize:      options.MaxAllocationSize,
		subAllocators:          make([]SubAllocator, options.SubAllocatorCount),
		regionsByResource:      swiss.NewMap[any, *UsedRegion](64),
		scheduler:              defrag.Scheduler{FrameDelay: options.DefragFrameDelay},
		pass:                   defrag.PassContext{MaxPassBytes: options.MaxPassBytes, MaxPassAllocations: options.MaxPassRegions},
		startingAllocationSize: options.StartingAllocationSize,
	}
	allocator.memoryCallbacks = memoryCallbacks{
		Callbacks: options.MemoryCallbackOptions,
		Allocator: allocator,
	}

	for i := range allocator.subAllocators {
		allocator.subAllocators[i].index = i
		allocator.subAllocators[i].nextAllocationSize = options.StartingAllocationSize
	}

	logger.Debug("Allocator::New", slog.Int("SubAllocatorCount", options.SubAllocatorCount), slog.String("Flags", options.Flags.String()))

	return allocator, nil
}
