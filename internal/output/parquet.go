package output

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/Serious-senpai/min-timespan-delivery-v2/internal/solver"
)

// WriteTrace stores a per-iteration search trace as a Parquet file. One row
// per iteration keeps multi-hour runs queryable without parsing logs.
func WriteTrace(path string, trace []solver.IterationRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(solver.IterationRecord), 2)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, rec := range trace {
		if err := pw.Write(rec); err != nil {
			pw.WriteStop()
			fw.Close()
			return fmt.Errorf("failed to write trace row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finalize trace file: %w", err)
	}
	return fw.Close()
}
