package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/cadence/internal/adapters/mq/queue"
	"github.com/okian/cadence/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func makeJob(id string) model.Job {
	return model.Job{ID: id, Transcript: "a short transcript", SubmittedAt: time.Now()}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a new InMemoryQueue", t, func() {
		Convey("When creating a queue with default options", func() {
			q := queue.NewInMemoryQueue()
			defer q.Close()

			Convey("Then it should start empty and open", func() {
				So(q, ShouldNotBeNil)
				So(q.Len(context.Background()), ShouldEqual, 0)
				So(q.IsClosed(), ShouldBeFalse)
			})
		})

		Convey("When enqueueing jobs", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
			defer q.Close()

			Convey("And the queue has room", func() {
				ok := q.Enqueue(context.Background(), makeJob("job-1"))

				Convey("Then the job should be accepted", func() {
					So(ok, ShouldBeTrue)
					So(q.Len(context.Background()), ShouldEqual, 1)
				})
			})

			Convey("And the queue is at capacity", func() {
				for i := 0; i < 10; i++ {
					So(q.Enqueue(context.Background(), makeJob(fmt.Sprintf("job-%d", i))), ShouldBeTrue)
				}

				ok := q.Enqueue(context.Background(), makeJob("overflow"))

				Convey("Then the overflow job should be rejected", func() {
					So(ok, ShouldBeFalse)
					So(q.Len(context.Background()), ShouldEqual, 10)
				})
			})
		})

		Convey("When dequeueing jobs", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))

			q.Enqueue(context.Background(), makeJob("job-1"))
			q.Enqueue(context.Background(), makeJob("job-2"))

			Convey("Then jobs should come out in FIFO order", func() {
				ch := q.Dequeue(context.Background())

				first := <-ch
				second := <-ch
				So(first.ID, ShouldEqual, "job-1")
				So(second.ID, ShouldEqual, "job-2")

				q.Close()
			})

			Convey("And closing the queue should close the channel", func() {
				ch := q.Dequeue(context.Background())
				<-ch
				<-ch

				So(q.Close(), ShouldBeNil)

				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue()
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue should be rejected", func() {
				So(q.Enqueue(context.Background(), makeJob("late")), ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("And closing again should be a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}

func TestInMemoryQueueConcurrency(t *testing.T) {
	Convey("Given concurrent producers and one consumer", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000), queue.WithBufferSize(1000))

		const producers = 4
		const perProducer = 100

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					q.Enqueue(context.Background(), makeJob(fmt.Sprintf("job-%d-%d", p, i)))
				}
			}(p)
		}

		received := make(map[string]bool)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for job := range q.Dequeue(context.Background()) {
				received[job.ID] = true
			}
		}()

		wg.Wait()
		q.Close()
		<-done

		Convey("Then every enqueued job should be delivered exactly once", func() {
			So(len(received), ShouldEqual, producers*perProducer)
		})
	})
}
