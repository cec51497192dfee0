package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/swingcoach/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When a feedback key is new", func() {
			seen := d.SeenAndRecord(ctx, "swing-1|u-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same key is submitted twice", func() {
			d.SeenAndRecord(ctx, "swing-1|u-1")
			seen := d.SeenAndRecord(ctx, "swing-1|u-1")

			Convey("Then the second is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded after a failed write", func() {
			d.SeenAndRecord(ctx, "swing-1|u-1")
			d.Unrecord(ctx, "swing-1|u-1")

			Convey("Then it can be submitted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "swing-1|u-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown key", func() {
			d.Unrecord(ctx, "nope")
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When persisted keys are preloaded", func() {
			d.Preload(ctx, []string{"a|", "b|u", "a|"})

			Convey("Then they count as seen", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "b|u"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("Then the oldest key is evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given concurrent submissions of one key", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var fresh atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "swing-9|u-9") {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one is accepted", func() {
			So(fresh.Load(), ShouldEqual, 1)
		})
	})
}
