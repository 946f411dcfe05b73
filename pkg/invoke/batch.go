package invoke

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

type Request struct {
	Target string `json:"target"`
	Args   []any  `json:"args"`
}

// InvokeAll runs the requests concurrently, at most Config.Concurrency at once.
// Results are returned in the order of reqs. Non-fatal failures are collected into
// a *multierror.Error. The first fatal failure stops the batch and is returned as is;
// requests not started by then keep a Result with an empty Outcome.
func (i *Invoker) InvokeAll(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	for idx, req := range reqs {
		results[idx] = Result{Target: req.Target}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if i.conf.Concurrency > 0 {
		eg.SetLimit(i.conf.Concurrency)
	}

	var mu sync.Mutex
	var errlist *multierror.Error

	for idx, req := range reqs {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				// batch is already stopped
				return nil
			}

			res, err := i.Invoke(egCtx, req.Target, req.Args...)
			results[idx] = res
			if err == nil {
				return nil
			}

			if hazyerr.CategoryOf(err) == hazyerr.CategoryFatal {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			errlist = multierror.Append(errlist, errors.Wrapf(err, "request #%d to %s failed", idx, req.Target))

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "batch interrupted")
	}

	return results, errlist.ErrorOrNil()
}
