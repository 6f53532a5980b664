package pipeline

import (
	"fmt"

	"github.com/fluxlab/flowsheet/pkg/model"
)

// Parse reads and validates the snapshot described by opts.
// It returns the snapshot together with its canonical encoding, which is
// what cache keys and store records hash.
func Parse(opts Options) (model.Snapshot, []byte, error) {
	if err := opts.ValidateForParse(); err != nil {
		return model.Snapshot{}, nil, err
	}

	var (
		s   model.Snapshot
		err error
	)
	if len(opts.Snapshot) > 0 {
		s, err = model.Parse(opts.Snapshot)
	} else {
		s, err = model.ReadFile(opts.SnapshotPath)
	}
	if err != nil {
		return model.Snapshot{}, nil, err
	}

	// Re-encode so hashes are independent of input formatting.
	canonical, err := model.Marshal(s)
	if err != nil {
		return model.Snapshot{}, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return s, canonical, nil
}
