package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/psvitals/vitals/model"
	"github.com/psvitals/vitals/util"
)

// TasklistAdapter enumerates Windows processes with "tasklist /fo csv /nh".
// tasklist knows nothing about cpu share, owner, or state, so its records
// carry only pid, image name, and working-set size.
type TasklistAdapter struct {
	Runner Runner
}

func (a *TasklistAdapter) Name() string { return "tasklist" }

func (a *TasklistAdapter) runner() Runner {
	if a.Runner == nil {
		return NewRunner()
	}
	return a.Runner
}

func (a *TasklistAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if kind != QueryProcesses {
		return nil, fmt.Errorf("tasklist: query %v: %w", kind, ErrSourceUnavailable)
	}
	r := a.runner()
	if !r.LookPath("tasklist") {
		return nil, fmt.Errorf("tasklist: command not found: %w", ErrSourceUnavailable)
	}
	out, err := r.Run(ctx, "tasklist", "/fo", "csv", "/nh")
	if err != nil {
		return nil, fmt.Errorf("tasklist: %v: %w", err, ErrSourceUnavailable)
	}
	records := parseTasklistCSV(out)
	if len(records) == 0 {
		return nil, fmt.Errorf("tasklist: no records: %w", ErrSourceUnavailable)
	}
	return &Partial{Source: a.Name(), Processes: records}, nil
}

// parseTasklistCSV reads rows of the form
// "Image Name","PID","Session Name","Session#","Mem Usage" where memory
// looks like "12,345 K". Short or unparseable rows are skipped.
func parseTasklistCSV(out []byte) []model.ProcessRecord {
	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []model.ProcessRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 5 {
			continue
		}
		pid, err := strconv.ParseInt(row[1], 10, 32)
		if err != nil || pid < 0 {
			continue
		}
		rec := model.NewProcessRecord(int32(pid))
		rec.Name = row[0]
		if v, err := util.ParseMemSize(row[4]); err == nil {
			rec.RSS = v
		}
		records = append(records, rec)
	}
	return records
}
