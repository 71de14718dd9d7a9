package pipeline

import "context"

// Iterator yields values one at a time. Next reports ok=false once the
// source is exhausted.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Pipeline is a lazy stage. Nothing runs until ForEach pulls from it.
type Pipeline[T any] struct {
	open func(ctx context.Context) Iterator[T]
}

// FromSlice streams items in slice order.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		open: func(context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// ForEach drains p, calling fn for every value. It stops at the first
// error from the pipeline or from fn.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	it := p.open(ctx)
	defer it.Close()
	for {
		v, ok, err := it.Next(ctx)
		switch {
		case err != nil:
			return err
		case !ok:
			return nil
		}
		if err := fn(ctx, v); err != nil {
			return err
		}
	}
}

type sliceIter[T any] struct {
	items []T
	pos   int
}

func (it *sliceIter[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if it.pos == len(it.items) {
		return zero, false, nil
	}
	v := it.items[it.pos]
	it.pos++
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

// item is a value or an error travelling from a worker to the consumer.
type item[T any] struct {
	val T
	err error
}

// chanIter reads worker output until the channel closes.
type chanIter[T any] struct {
	ch   <-chan item[T]
	stop func() error
}

func (it *chanIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case r, open := <-it.ch:
		if !open {
			return zero, false, nil
		}
		if r.err != nil {
			return zero, false, r.err
		}
		return r.val, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (it *chanIter[T]) Close() error { return it.stop() }
