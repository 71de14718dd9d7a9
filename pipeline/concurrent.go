package pipeline

import (
	"context"
	"sync"
)

// Parallel runs fn over the values of p on n workers and yields results as
// they complete, so output order is not input order. The first error stops
// the workers. Use ParallelCollect when results must line up with inputs.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	n = max(n, 1)
	return &Pipeline[O]{
		open: func(ctx context.Context) Iterator[O] {
			src := p.open(ctx)
			ctx, cancel := context.WithCancel(ctx)
			in := make(chan I, n)
			out := make(chan item[O], n)

			send := func(r item[O]) bool {
				select {
				case out <- r:
					return true
				case <-ctx.Done():
					return false
				}
			}

			go func() {
				defer close(in)
				for {
					v, ok, err := src.Next(ctx)
					if err != nil {
						send(item[O]{err: err})
						return
					}
					if !ok {
						return
					}
					select {
					case in <- v:
					case <-ctx.Done():
						return
					}
				}
			}()

			var wg sync.WaitGroup
			for range n {
				wg.Go(func() {
					for v := range in {
						o, err := fn(ctx, v)
						if err != nil {
							send(item[O]{err: err})
							cancel()
							return
						}
						if !send(item[O]{val: o}) {
							return
						}
					}
				})
			}
			go func() {
				wg.Wait()
				close(out)
			}()

			return &chanIter[O]{ch: out, stop: func() error {
				cancel()
				return src.Close()
			}}
		},
	}
}

type indexed[T any] struct {
	idx int
	val T
}

// ParallelCollect applies fn to every item with up to n workers and returns
// the results in input order, whatever order the workers finish in. The
// first error, or cancellation of ctx, aborts the batch and is returned.
func ParallelCollect[I, O any](ctx context.Context, items []I, n int, fn func(context.Context, int, I) (O, error)) ([]O, error) {
	jobs := make([]indexed[I], len(items))
	for i, v := range items {
		jobs[i] = indexed[I]{idx: i, val: v}
	}

	out := make([]O, len(items))
	done := Parallel(FromSlice(jobs), n, func(ctx context.Context, j indexed[I]) (indexed[O], error) {
		o, err := fn(ctx, j.idx, j.val)
		return indexed[O]{idx: j.idx, val: o}, err
	})
	err := ForEach(ctx, done, func(_ context.Context, r indexed[O]) error {
		out[r.idx] = r.val
		return nil
	})
	if err != nil {
		return nil, err
	}
	// the output channel may close before the cancellation is observed
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
