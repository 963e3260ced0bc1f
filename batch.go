package wavmeta

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ResolveMany resolves the serial numbers of many files concurrently.
//
// Files are processed by up to runtime.NumCPU() goroutines, each opening its
// own handle. Results are returned in the same order as paths. Per-file
// failures end up as SerialUnknown resolutions; the only error returned is
// the context's.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
//	defer cancel()
//
//	results, err := wavmeta.NewResolver().ResolveMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, res := range results {
//		fmt.Printf("%s,%s\n", res.Path, res.Serial)
//	}
func (r *Resolver) ResolveMany(ctx context.Context, paths ...string) ([]Resolution, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]Resolution, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = r.Resolve(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
