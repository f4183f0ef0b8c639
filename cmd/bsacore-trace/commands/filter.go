package commands

import (
	"fmt"
	"io"

	"github.com/hmbui/bsacore-test/pkg/log"
)

// RunFilter writes the events of path that match opts to output, a new
// trace file. The summary line goes to w.
func RunFilter(path, output string, opts FilterOptions, w io.Writer) error {
	filter, err := BuildFilter(opts)
	if err != nil {
		return err
	}

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output trace: %w", err)
	}
	defer logger.Close()

	count := 0
	err = eachEvent(path, filter, func(e log.Event) error {
		logger.Log(e)
		count++
		return logger.Err()
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
