package repository_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/cadence/internal/adapters/repository"
	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/audio"
	model "github.com/okian/cadence/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func makeJob(id string) model.Job {
	return model.Job{
		ID:          id,
		Clip:        audio.New([]float64{0.1, -0.2, 0.3}, 16000),
		Transcript:  "quick check",
		SubmittedAt: time.Now(),
	}
}

func makeResult(score float64) analysis.Result {
	return analysis.Result{
		Assessment:           analysis.Assessment{OverallAudioScore: score},
		AudioDurationSeconds: 1.5,
	}
}

func TestShardedStoreCreateAndGet(t *testing.T) {
	convey.Convey("Given a sharded store", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx)
		defer store.Close() //nolint:errcheck // close error irrelevant in tests

		convey.Convey("When a job is created", func() {
			convey.So(store.Create(ctx, makeJob("job-1")), convey.ShouldBeNil)

			convey.Convey("Then it can be read back as pending", func() {
				rec, err := store.Get(ctx, "job-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Job.ID, convey.ShouldEqual, "job-1")
				convey.So(rec.Status, convey.ShouldEqual, model.StatusPending)
				convey.So(rec.Result, convey.ShouldBeNil)
				convey.So(rec.CompletedAt.IsZero(), convey.ShouldBeTrue)
			})

			convey.Convey("Then creating the same ID again fails", func() {
				err := store.Create(ctx, makeJob("job-1"))
				convey.So(errors.Is(err, repository.ErrDuplicateID), convey.ShouldBeTrue)
			})

			convey.Convey("Then the count reflects it", func() {
				convey.So(store.Count(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When an unknown job is read", func() {
			_, err := store.Get(ctx, "missing")

			convey.Convey("Then it reports not found", func() {
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestShardedStoreComplete(t *testing.T) {
	convey.Convey("Given a store with a pending job", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx)
		defer store.Close() //nolint:errcheck // close error irrelevant in tests

		convey.So(store.Create(ctx, makeJob("job-1")), convey.ShouldBeNil)

		convey.Convey("When the job is completed", func() {
			convey.So(store.Complete(ctx, "job-1", makeResult(82)), convey.ShouldBeNil)

			convey.Convey("Then the record carries the result", func() {
				rec, err := store.Get(ctx, "job-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Status, convey.ShouldEqual, model.StatusCompleted)
				convey.So(rec.Result, convey.ShouldNotBeNil)
				convey.So(rec.Result.Assessment.OverallAudioScore, convey.ShouldEqual, 82)
				convey.So(rec.CompletedAt.IsZero(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an unknown job is completed", func() {
			err := store.Complete(ctx, "missing", makeResult(50))

			convey.Convey("Then it reports not found", func() {
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestShardedStoreDelete(t *testing.T) {
	convey.Convey("Given a store with a job", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx)
		defer store.Close() //nolint:errcheck // close error irrelevant in tests

		convey.So(store.Create(ctx, makeJob("job-1")), convey.ShouldBeNil)

		convey.Convey("When the job is deleted", func() {
			store.Delete(ctx, "job-1")

			convey.Convey("Then it is gone and the count drops", func() {
				_, err := store.Get(ctx, "job-1")
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
				convey.So(store.Count(ctx), convey.ShouldEqual, 0)
			})

			convey.Convey("Then the ID can be reused", func() {
				convey.So(store.Create(ctx, makeJob("job-1")), convey.ShouldBeNil)
			})
		})

		convey.Convey("When an unknown job is deleted", func() {
			convey.Convey("Then nothing happens", func() {
				convey.So(func() { store.Delete(ctx, "missing") }, convey.ShouldNotPanic)
				convey.So(store.Count(ctx), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestShardedStoreEviction(t *testing.T) {
	convey.Convey("Given a single-shard store with capacity 2", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx,
			repository.WithShardCount(1),
			repository.WithCapacity(2),
		)
		defer store.Close() //nolint:errcheck // close error irrelevant in tests

		convey.So(store.Create(ctx, makeJob("old")), convey.ShouldBeNil)
		convey.So(store.Create(ctx, makeJob("new")), convey.ShouldBeNil)

		convey.Convey("When a third job arrives and one is completed", func() {
			convey.So(store.Complete(ctx, "new", makeResult(75)), convey.ShouldBeNil)
			convey.So(store.Create(ctx, makeJob("newest")), convey.ShouldBeNil)

			convey.Convey("Then the completed record is evicted over the older pending one", func() {
				_, err := store.Get(ctx, "new")
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)

				_, err = store.Get(ctx, "old")
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Count(ctx), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a third job arrives and nothing has finished", func() {
			convey.So(store.Create(ctx, makeJob("newest")), convey.ShouldBeNil)

			convey.Convey("Then the oldest pending record is evicted", func() {
				_, err := store.Get(ctx, "old")
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)

				_, err = store.Get(ctx, "new")
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Count(ctx), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestShardedStoreConcurrency(t *testing.T) {
	convey.Convey("Given a store under concurrent access", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx, repository.WithCapacity(10000))
		defer store.Close() //nolint:errcheck // close error irrelevant in tests

		const (
			writers      = 8
			jobsPerChunk = 100
		)

		convey.Convey("When many goroutines create and complete jobs", func() {
			var wg sync.WaitGroup
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < jobsPerChunk; i++ {
						id := "job-" + strconv.Itoa(w) + "-" + strconv.Itoa(i)
						if err := store.Create(ctx, makeJob(id)); err != nil {
							continue
						}
						_ = store.Complete(ctx, id, makeResult(float64(i%100))) //nolint:errcheck // racing completes acceptable here
					}
				}(w)
			}
			wg.Wait()

			convey.Convey("Then every job is tracked and completed", func() {
				convey.So(store.Count(ctx), convey.ShouldEqual, writers*jobsPerChunk)

				rec, err := store.Get(ctx, "job-0-0")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Status, convey.ShouldEqual, model.StatusCompleted)
			})
		})
	})
}

func TestShardedStoreClose(t *testing.T) {
	convey.Convey("Given a store", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx,
			repository.WithMetricsUpdateInterval(10*time.Millisecond),
		)

		convey.Convey("When Close is called twice", func() {
			convey.Convey("Then both calls succeed", func() {
				convey.So(store.Close(), convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the store is closed", func() {
			convey.So(store.Close(), convey.ShouldBeNil)

			convey.Convey("Then it still serves reads and writes", func() {
				convey.So(store.Create(ctx, makeJob("after-close")), convey.ShouldBeNil)
				rec, err := store.Get(ctx, "after-close")
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.Status, convey.ShouldEqual, model.StatusPending)
			})
		})
	})
}
