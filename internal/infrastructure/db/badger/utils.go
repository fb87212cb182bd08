package badgerdb

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const maxRetries = 5

var (
	errInvalidConfig  = fmt.Errorf("invalid config")
	errInvalidBaseDir = fmt.Errorf("invalid base directory")
	errInvalidLogger  = fmt.Errorf("invalid logger")
)

// createDB opens a badgerhold store at the given directory, or a purely
// in-memory one when the directory is empty.
func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func parseConfig(config ...interface{}) (string, badger.Logger, error) {
	if len(config) != 2 {
		return "", nil, errInvalidConfig
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return "", nil, errInvalidBaseDir
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return "", nil, errInvalidLogger
		}
	}
	return baseDir, logger, nil
}
