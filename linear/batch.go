package linear

import (
	"context"

	"github.com/ezoic/minwls/core/parallel"
	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

// FitAll fits independent solvers concurrently with the same options and
// returns the results in input order. The first failure cancels the
// remaining fits and is returned wrapped with the problem index.
func FitAll(ctx context.Context, problems []*MinimalWLS, opts ...FitOption) ([]*WLSResults, error) {
	results := make([]*WLSResults, len(problems))
	err := parallel.ForEach(ctx, len(problems), 0, func(_ context.Context, i int) error {
		res, err := problems[i].Fit(opts...)
		if err != nil {
			return scigoErrors.Wrapf(err, "problem %d", i)
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
