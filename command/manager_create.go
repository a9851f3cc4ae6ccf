package command

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/fna3d/buffer"
	"github.com/vkngwrapper/fna3d/internal/utils"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific manager behaviors to activate or deactivate
type CreateFlags int32

var managerCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	managerCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return managerCreateFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that this manager will not be synchronized internally.
	// The consumer must guarantee it is used from only one thread at a time.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating a manager
type CreateOptions struct {
	Flags CreateFlags
	// StartingTransferSize is the size of the first slow transfer buffer
	StartingTransferSize int
	// FastTransferSize is the size of the fast transfer buffer. Only requests strictly smaller than
	// this use it.
	FastTransferSize int
}

// New creates a Manager along with its fast transfer buffer and first slow transfer buffer
func New(logger *slog.Logger, driver Driver, options CreateOptions) (*Manager, error) {
	if driver == nil {
		return nil, errors.New("attempted to create a command buffer manager without a driver")
	}

	if options.StartingTransferSize == 0 {
		options.StartingTransferSize = DefaultStartingTransferSize
	}
	if options.FastTransferSize == 0 {
		options.FastTransferSize = DefaultFastTransferSize
	}
	if options.StartingTransferSize < 0 || options.FastTransferSize < 0 {
		return nil, errors.Newf("transfer buffer sizes may not be negative: starting %d, fast %d",
			options.StartingTransferSize, options.FastTransferSize)
	}

	logger = utils.LoggerOrDiscard(logger)
	useMutex := options.Flags&CreateExternallySynchronized == 0

	manager := &Manager{
		logger:       logger,
		driver:       driver,
		commandLock:  utils.OptionalMutex{UseMutex: useMutex},
		transferLock: utils.OptionalMutex{UseMutex: useMutex},
		refLock:      utils.OptionalMutex{UseMutex: useMutex},
		boundCounts:  swiss.NewMap[buffer.Handle, int](64),
	}

	err := manager.transfers.init(logger, driver, options.StartingTransferSize, options.FastTransferSize)
	if err != nil {
		return nil, err
	}

	logger.Debug("Manager::New",
		slog.Int("StartingTransferSize", options.StartingTransferSize),
		slog.Int("FastTransferSize", options.FastTransferSize),
		slog.String("Flags", options.Flags.String()),
	)

	return manager, nil
}
