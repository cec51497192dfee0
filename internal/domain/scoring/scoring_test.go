package scoring_test

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	scoring "github.com/okian/swingcoach/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func clusteredAnalysis() model.Analysis {
	return model.Analysis{
		OverallScore: 73,
		Metrics: map[string]int{
			"backswing": 72, "stance": 74, "grip": 73, "swingBack": 72, "swingForward": 74,
			"hipRotation": 73, "swingSpeed": 74, "shallowing": 72, "pacing": 73,
			"confidence": 74, "focus": 73,
		},
		Recommendations: []string{"a", "b", "c"},
	}
}

func TestWeightedOverall(t *testing.T) {
	Convey("Given the default registry weights", t, func() {
		reg := metric.Default()

		Convey("When all keys are registered", func() {
			scores := map[string]int{"stance": 80, "swingForward": 60, "focus": 90}
			got, ok := scoring.WeightedOverall(reg, scores)

			Convey("Then it equals the normalized weighted mean", func() {
				want := (80*0.07 + 60*0.15 + 90*0.05) / (0.07 + 0.15 + 0.05)
				So(ok, ShouldBeTrue)
				So(math.Abs(float64(got)-want), ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When an unknown key is present", func() {
			got, _ := scoring.WeightedOverall(reg, map[string]int{"wristHinge": 40, "focus": 80})

			Convey("Then it gets the default weight", func() {
				So(got, ShouldEqual, 60)
			})
		})

		Convey("When the mapping is empty", func() {
			_, ok := scoring.WeightedOverall(reg, nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestVarianceStretch(t *testing.T) {
	Convey("Given tightly clustered metrics", t, func() {
		in := clusteredAnalysis().Metrics
		out, changed := scoring.VarianceStretch(in)

		Convey("Then the spread opens up and the mean is kept", func() {
			So(changed, ShouldBeTrue)
			inMean, _ := scoring.MeanStdDev(in)
			outMean, sd := scoring.MeanStdDev(out)
			So(sd, ShouldBeGreaterThanOrEqualTo, 8)
			So(math.Abs(inMean-outMean), ShouldBeLessThan, 1)
			So(out["backswing"], ShouldEqual, 56)
			So(out["stance"], ShouldEqual, 87)
			So(out["grip"], ShouldEqual, 72)
		})

		Convey("Then the input map is untouched", func() {
			So(in["backswing"], ShouldEqual, 72)
		})
	})

	Convey("Given fewer than four metrics", t, func() {
		_, changed := scoring.VarianceStretch(map[string]int{"grip": 70, "stance": 71, "focus": 72})
		So(changed, ShouldBeFalse)
	})

	Convey("Given a standard deviation of exactly ten", t, func() {
		scores := map[string]int{"grip": 60, "stance": 80, "focus": 60, "pacing": 80}
		_, sd := scoring.MeanStdDev(scores)
		So(sd, ShouldEqual, 10)
		_, changed := scoring.VarianceStretch(scores)
		So(changed, ShouldBeFalse)
	})

	Convey("Given identical scores", t, func() {
		_, changed := scoring.VarianceStretch(map[string]int{"a": 70, "b": 70, "c": 70, "d": 70})
		So(changed, ShouldBeFalse)
	})
}

func TestRedistribute(t *testing.T) {
	Convey("Given overall scores outside the shaped band", t, func() {
		So(scoring.Redistribute(99, map[string]int{"backswing": 99}), ShouldEqual, 95)
		So(scoring.Redistribute(10, map[string]int{"backswing": 20}), ShouldEqual, 30)
		So(scoring.Redistribute(10, nil), ShouldEqual, 30)
	})

	Convey("Given an overall far from the metrics mean", t, func() {
		got := scoring.Redistribute(90, map[string]int{"grip": 60, "stance": 60})

		Convey("Then it is pulled to within fifteen points", func() {
			So(got, ShouldBeLessThanOrEqualTo, 75)
			So(got, ShouldBeGreaterThan, 60)
		})
	})

	Convey("Given a gap that one blend step does not close", t, func() {
		oneStep := scoring.Round(0.7*90 + 0.3*60)

		Convey("Then the pull repeats until the gap is within fifteen", func() {
			So(oneStep, ShouldEqual, 81)
			So(scoring.Redistribute(90, map[string]int{"grip": 60, "stance": 60}), ShouldEqual, 75)
		})
	})

	Convey("Given an overall already close to the mean", t, func() {
		So(scoring.Redistribute(70, map[string]int{"grip": 60, "stance": 66}), ShouldEqual, 70)
	})
}

func TestNormalizeAndValidate(t *testing.T) {
	Convey("Given a shaper", t, func() {
		s := scoring.NewShaper()

		Convey("When shaping a clustered model response", func() {
			out := s.NormalizeAndValidate(clusteredAnalysis())

			Convey("Then overall stays near the weighted mean and metrics spread", func() {
				w, _ := scoring.WeightedOverall(metric.Default(), out.Metrics)
				So(math.Abs(float64(out.OverallScore-w)), ShouldBeLessThanOrEqualTo, 3)
				So(out.OverallScore, ShouldEqual, 73)
				_, sd := scoring.MeanStdDev(out.Metrics)
				So(sd, ShouldBeGreaterThanOrEqualTo, 8)
				for _, v := range out.Metrics {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			})

			Convey("Then shaping again changes nothing", func() {
				So(s.NormalizeAndValidate(out), ShouldResemble, out)
			})
		})

		Convey("When the overall is extreme", func() {
			out := s.NormalizeAndValidate(model.Analysis{
				OverallScore: 99,
				Metrics:      map[string]int{"backswing": 99},
			})
			So(out.OverallScore, ShouldEqual, 95)
		})

		Convey("When scores are out of range", func() {
			out := s.NormalizeAndValidate(model.Analysis{
				OverallScore: 140,
				Metrics:      map[string]int{"grip": -5, "stance": 120},
			})
			So(out.Metrics["grip"], ShouldEqual, 0)
			So(out.Metrics["stance"], ShouldEqual, 100)
			So(out.OverallScore, ShouldBeBetweenOrEqual, 30, 95)
		})

		Convey("When the overall disagrees with the weighted metrics", func() {
			out := s.NormalizeAndValidate(model.Analysis{
				OverallScore: 90,
				Metrics:      map[string]int{"grip": 60, "stance": 62, "focus": 58},
			})
			So(out.OverallScore, ShouldEqual, 60)
		})

		Convey("When metrics diverge wildly", func() {
			in := model.Analysis{
				OverallScore: 95,
				Metrics:      map[string]int{"grip": 10, "stance": 12, "focus": 15, "pacing": 90},
			}
			once := s.NormalizeAndValidate(in)
			So(once.OverallScore, ShouldEqual, 30)
			So(s.NormalizeAndValidate(once), ShouldResemble, once)
		})

		Convey("When a high cluster is shaped twice", func() {
			in := model.Analysis{
				OverallScore: 90,
				Metrics:      map[string]int{"stance": 88, "grip": 90, "focus": 89, "pacing": 91, "confidence": 90},
			}
			once := s.NormalizeAndValidate(in)
			So(s.NormalizeAndValidate(once), ShouldResemble, once)
		})

		Convey("When a near-perfect cluster is pinned against 100", func() {
			in := model.Analysis{
				OverallScore: -5,
				Metrics:      map[string]int{"backswing": 96, "ballPosition": 96, "grip": 96, "stance": 97},
			}
			once := s.NormalizeAndValidate(in)

			Convey("Then the stretch runs to a fixpoint", func() {
				So(once.Metrics, ShouldResemble, map[string]int{"backswing": 77, "ballPosition": 77, "grip": 77, "stance": 100})
				So(once.OverallScore, ShouldEqual, 82)
				So(s.NormalizeAndValidate(once), ShouldResemble, once)
			})
		})

		Convey("When there are no metrics", func() {
			out := s.NormalizeAndValidate(model.Analysis{OverallScore: 20})
			So(out.OverallScore, ShouldEqual, 30)
		})

		Convey("Then the input analysis is not mutated", func() {
			in := clusteredAnalysis()
			_ = s.NormalizeAndValidate(in)
			So(in.Metrics["backswing"], ShouldEqual, 72)
		})
	})
}

func TestFinalize(t *testing.T) {
	Convey("Given a shaper without variation", t, func() {
		s := scoring.NewShaper()
		So(s.Finalize(70, map[string]int{"grip": 70}), ShouldEqual, 70)
	})

	Convey("Given a shaper with minimal variation", t, func() {
		s := scoring.NewShaper(scoring.WithMinimalVariation(rand.NewSource(7)))

		Convey("Then the jitter is at most one point and stays in band", func() {
			for i := 0; i < 50; i++ {
				got := s.Finalize(70, map[string]int{"grip": 70})
				So(got, ShouldBeBetweenOrEqual, 69, 71)
				edge := s.Finalize(95, map[string]int{"grip": 95})
				So(edge, ShouldBeBetweenOrEqual, 94, 95)
			}
		})
	})
}

func TestNormalizeAndValidateIsIdempotent(t *testing.T) {
	Convey("Given random clustered metrics across the score range", t, func() {
		s := scoring.NewShaper()
		keys := metric.Default().Keys()
		rng := rand.New(rand.NewSource(42))

		var failures []model.Analysis
		for i := 0; i < 20000; i++ {
			base := 60 + rng.Intn(41)
			if i%4 == 0 {
				base = rng.Intn(101)
			}
			n := 4 + rng.Intn(7)
			scores := make(map[string]int, n)
			for _, j := range rng.Perm(len(keys))[:n] {
				scores[keys[j]] = scoring.Clamp(base+rng.Intn(13)-6, model.MinScore, model.MaxScore)
			}
			in := model.Analysis{OverallScore: rng.Intn(121) - 10, Metrics: scores}

			once := s.NormalizeAndValidate(in)
			if twice := s.NormalizeAndValidate(once); !reflect.DeepEqual(once, twice) {
				failures = append(failures, in)
			}
		}

		Convey("Then shaping an already shaped analysis changes nothing", func() {
			So(failures, ShouldBeEmpty)
		})
	})
}
