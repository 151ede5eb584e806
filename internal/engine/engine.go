package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"firehoseproc/internal/logging"
	"firehoseproc/internal/pipeline"
)

type Engine struct {
	runner  *pipeline.Runner
	metrics *http.Server
}

// Run consumes until ctx ends, then shuts the metrics endpoint down and
// closes the runner.
func (e *Engine) Run(ctx context.Context) error {
	var merr *multierror.Error
	if err := e.runner.Run(ctx); err != nil {
		merr = multierror.Append(merr, err)
	}

	st := e.runner.Stats()
	logging.L().Info("replay stopped", "delivered", st.Delivered, "dropped", st.Dropped, "failed", st.Failed)

	if e.metrics != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.metrics.Shutdown(sctx); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := e.runner.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
