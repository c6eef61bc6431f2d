package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/cadence/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording request IDs", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the ID is new", func() {
				seen := d.SeenAndRecord(context.Background(), "req-1")

				Convey("Then it should return false and record the ID", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the ID was already seen", func() {
				d.SeenAndRecord(context.Background(), "req-1")

				seen := d.SeenAndRecord(context.Background(), "req-1")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And distinct IDs are recorded", func() {
				d.SeenAndRecord(context.Background(), "req-1")
				d.SeenAndRecord(context.Background(), "req-2")
				d.SeenAndRecord(context.Background(), "req-3")

				Convey("Then each should count once", func() {
					So(d.Size(), ShouldEqual, 3)
				})
			})
		})

		Convey("When unrecording a request ID", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(context.Background(), "req-1")

			d.Unrecord(context.Background(), "req-1")

			Convey("Then the ID should be admissible again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(context.Background(), "req-1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown ID should be a no-op", func() {
				d.Unrecord(context.Background(), "never-seen")
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestInMemoryDeduperEviction(t *testing.T) {
	Convey("Given a deduper bounded to three IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When a fourth ID arrives", func() {
			d.SeenAndRecord(context.Background(), "req-1")
			d.SeenAndRecord(context.Background(), "req-2")
			d.SeenAndRecord(context.Background(), "req-3")
			d.SeenAndRecord(context.Background(), "req-4")

			Convey("Then the oldest ID should have been evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "req-1"), ShouldBeFalse)
			})

			Convey("And the newer IDs should still be remembered", func() {
				So(d.SeenAndRecord(context.Background(), "req-3"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "req-4"), ShouldBeTrue)
			})
		})

		Convey("When an evicted slot was unrecorded first", func() {
			d.SeenAndRecord(context.Background(), "req-1")
			d.SeenAndRecord(context.Background(), "req-2")
			d.Unrecord(context.Background(), "req-1")

			d.SeenAndRecord(context.Background(), "req-3")
			d.SeenAndRecord(context.Background(), "req-4")

			Convey("Then the size should stay consistent", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given concurrent submitters racing on overlapping IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))

		const goroutines = 8
		const perGoroutine = 200

		var wg sync.WaitGroup
		admitted := make([]int, goroutines)

		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < perGoroutine; i++ {
					// All goroutines contend on the same ID space.
					id := fmt.Sprintf("req-%d", i)
					if !d.SeenAndRecord(context.Background(), id) {
						admitted[g]++
					}
				}
			}(g)
		}
		wg.Wait()

		Convey("Then each ID should be admitted exactly once", func() {
			total := 0
			for _, n := range admitted {
				total += n
			}
			So(total, ShouldEqual, perGoroutine)
			So(d.Size(), ShouldEqual, perGoroutine)
		})
	})
}
