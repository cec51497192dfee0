package metric_test

import (
	"errors"
	"testing"

	"github.com/okian/swingcoach/internal/domain/metric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultRegistry(t *testing.T) {
	Convey("Given the built-in registry", t, func() {
		r := metric.Default()

		Convey("Then the weight table matches the catalog", func() {
			So(r.Weight("stance"), ShouldEqual, 0.07)
			So(r.Weight("swingForward"), ShouldEqual, 0.15)
			So(r.Weight("impactPosition"), ShouldEqual, 0.15)
			So(r.Weight("followThrough"), ShouldEqual, 0.04)
			So(r.Weight("swingSpeed"), ShouldEqual, 0.05)
		})

		Convey("Then unknown keys get the default weight and a generic description", func() {
			So(r.Weight("wristHinge"), ShouldEqual, metric.DefaultWeight)
			So(r.Describe("wristHinge"), ShouldEqual, metric.GenericDescription)
			_, ok := r.Get("wristHinge")
			So(ok, ShouldBeFalse)
		})

		Convey("Then aliases collapse onto canonical keys", func() {
			So(r.Canonical("swingBack"), ShouldEqual, "backswing")
			So(r.Canonical("clubTrajectoryBackswing"), ShouldEqual, "backswing")
			So(r.Canonical("clubTrajectoryForswing"), ShouldEqual, "swingForward")
			So(r.Canonical("downswing"), ShouldEqual, "swingForward")
			So(r.Canonical("grip"), ShouldEqual, "grip")
		})

		Convey("Then resolve keeps registered keys and maps unregistered aliases", func() {
			k, ok := r.Resolve("swingBack")
			So(ok, ShouldBeTrue)
			So(k, ShouldEqual, "swingBack")

			k, ok = r.Resolve("downswing")
			So(ok, ShouldBeTrue)
			So(k, ShouldEqual, "swingForward")

			_, ok = r.Resolve("putterLoft")
			So(ok, ShouldBeFalse)
		})

		Convey("Then every metric has a full rubric", func() {
			for _, m := range r.All() {
				for _, band := range m.Rubric {
					So(band, ShouldNotBeBlank)
				}
				So(m.Difficulty, ShouldBeBetweenOrEqual, 1, 10)
			}
			So(len(r.Keys()), ShouldEqual, 18)
		})

		Convey("Then the same instance is returned every time", func() {
			So(metric.Default(), ShouldPointTo, r)
		})
	})
}

func TestNewRegistryValidation(t *testing.T) {
	Convey("Given malformed metric tables", t, func() {
		Convey("When a weight is zero", func() {
			_, err := metric.NewRegistry([]metric.Metric{{Key: "grip", Weight: 0, Difficulty: 3}}, nil)
			So(errors.Is(err, metric.ErrInvalidWeight), ShouldBeTrue)
		})

		Convey("When a weight exceeds one", func() {
			_, err := metric.NewRegistry([]metric.Metric{{Key: "grip", Weight: 1.2, Difficulty: 3}}, nil)
			So(errors.Is(err, metric.ErrInvalidWeight), ShouldBeTrue)
		})

		Convey("When difficulty is out of range", func() {
			_, err := metric.NewRegistry([]metric.Metric{{Key: "grip", Weight: 0.1, Difficulty: 11}}, nil)
			So(errors.Is(err, metric.ErrInvalidDifficulty), ShouldBeTrue)
		})

		Convey("When a key is repeated", func() {
			_, err := metric.NewRegistry([]metric.Metric{
				{Key: "grip", Weight: 0.1, Difficulty: 3},
				{Key: "grip", Weight: 0.2, Difficulty: 3},
			}, nil)
			So(errors.Is(err, metric.ErrDuplicateMetric), ShouldBeTrue)
		})

		Convey("When an alias targets nothing", func() {
			_, err := metric.NewRegistry([]metric.Metric{{Key: "grip", Weight: 0.1, Difficulty: 3}},
				map[string]string{"hands": "palms"})
			So(errors.Is(err, metric.ErrDanglingAlias), ShouldBeTrue)
		})
	})
}

func TestBand(t *testing.T) {
	Convey("Given rubric band boundaries", t, func() {
		So(metric.Band(90), ShouldEqual, metric.BandExcellent)
		So(metric.Band(89), ShouldEqual, metric.BandGood)
		So(metric.Band(70), ShouldEqual, metric.BandGood)
		So(metric.Band(69), ShouldEqual, metric.BandFair)
		So(metric.Band(50), ShouldEqual, metric.BandFair)
		So(metric.Band(49), ShouldEqual, metric.BandPoor)
	})
}
