package scheduler

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

// RunOnce reads one request from r and writes one record to w. The returned
// error is the reason the run failed; the failure record has already been
// written when it is non-nil.
func RunOnce(ctx context.Context, svc *Service, r io.Reader, w io.Writer) error {
	res, err := svc.ScheduleFrom(ctx, Origin{Source: SourceCLI, RequestID: uuid.NewString()}, r)
	if err == nil {
		return writeIndented(w, res)
	}
	if werr := writeIndented(w, Failure(err)); werr != nil {
		return werr
	}
	return err
}

func writeIndented(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
