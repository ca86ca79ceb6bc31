package gocollect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestResolved(t *testing.T) {
	is := is.New(t)

	f := Resolved(42)
	is.True(f.Settled())

	v, err := f.Await(context.Background())
	is.NoErr(err)
	is.Equal(v, 42)

	v, err = f.Await(context.Background())
	is.NoErr(err)
	is.Equal(v, 42)
}

func TestRejected(t *testing.T) {
	is := is.New(t)

	boom := errors.New("boom")

	_, err := Rejected(boom).Await(context.Background())
	is.True(errors.Is(err, boom))
}

func TestNewFuture_SettlesOnce(t *testing.T) {
	is := is.New(t)

	f, resolve, reject := NewFuture()
	is.True(!f.Settled())

	resolve(1)
	resolve(2)
	reject(errors.New("late"))

	v, err := f.Await(context.Background())
	is.NoErr(err)
	is.Equal(v, 1)
}

func TestGo(t *testing.T) {
	is := is.New(t)

	f := Go(context.Background(), func(_ context.Context) (any, error) {
		return "works", nil
	})

	v, err := f.Await(context.Background())
	is.NoErr(err)
	is.Equal(v, "works")
}

func TestFuture_AwaitCanceled(t *testing.T) {
	is := is.New(t)

	f, _, _ := NewFuture()

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(ErrCleared)

	_, err := f.Await(ctx)
	is.True(errors.Is(err, ErrCleared))
}

func TestSleep(t *testing.T) {
	is := is.New(t)

	v, err := Sleep(time.Millisecond, nil).Await(context.Background())
	is.NoErr(err)
	is.Equal(v, Record{"sleep": time.Millisecond})

	v, err = Sleep(time.Millisecond, "woke").Await(context.Background())
	is.NoErr(err)
	is.Equal(v, "woke")
}
