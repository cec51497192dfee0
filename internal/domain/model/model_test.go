package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "github.com/okian/swingcoach/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func validAnalysis() model.Analysis {
	now := time.Now()
	return model.Analysis{
		ID:              "swing-1",
		AnalyzedAt:      now,
		RecordedAt:      now.Add(-time.Hour),
		OverallScore:    72,
		Metrics:         map[string]int{"grip": 70, "stance": 75},
		Recommendations: []string{"Keep the lead arm straighter."},
		Club:            &model.Club{Name: "7 iron", Type: model.ClubIron},
		Video:           model.VideoRef{Kind: model.VideoLocal, Signature: "file:a.mp4:10:1"},
		Source:          model.SourceLLM,
	}
}

func TestAnalysis(t *testing.T) {
	convey.Convey("Given a valid analysis", t, func() {
		a := validAnalysis()

		convey.Convey("Then it validates", func() {
			convey.So(a.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When it is cloned and the clone mutated", func() {
			c := a.Clone()
			c.Metrics["grip"] = 10
			c.Recommendations[0] = "changed"
			c.Club.Name = "driver"

			convey.Convey("Then the original is untouched", func() {
				convey.So(a.Metrics["grip"], convey.ShouldEqual, 70)
				convey.So(a.Recommendations[0], convey.ShouldEqual, "Keep the lead arm straighter.")
				convey.So(a.Club.Name, convey.ShouldEqual, "7 iron")
			})
		})

		convey.Convey("When it is marshalled", func() {
			a.Source = model.SourceMock
			raw, err := json.Marshal(a)
			convey.So(err, convey.ShouldBeNil)

			var out map[string]any
			convey.So(json.Unmarshal(raw, &out), convey.ShouldBeNil)

			convey.Convey("Then the mock flag and score keys are present", func() {
				convey.So(out["_isMockData"], convey.ShouldEqual, true)
				convey.So(out["overallScore"], convey.ShouldEqual, 72.0)
				convey.So(out["source"], convey.ShouldEqual, "mock")
			})
		})

		convey.Convey("When invariants are broken", func() {
			cases := map[string]func(*model.Analysis){
				"overall too high":        func(a *model.Analysis) { a.OverallScore = 99 },
				"overall too low":         func(a *model.Analysis) { a.OverallScore = 12 },
				"metric out of range":     func(a *model.Analysis) { a.Metrics["grip"] = 101 },
				"no recommendations":      func(a *model.Analysis) { a.Recommendations = nil },
				"too many":                func(a *model.Analysis) { a.Recommendations = []string{"a", "b", "c", "d"} },
				"blank recommendation":    func(a *model.Analysis) { a.Recommendations = []string{" "} },
				"hosted without id":       func(a *model.Analysis) { a.Video = model.VideoRef{Kind: model.VideoHosted} },
				"recorded after analyzed": func(a *model.Analysis) { a.RecordedAt = a.AnalyzedAt.Add(time.Minute) },
			}
			for name, mutate := range cases {
				b := validAnalysis()
				mutate(&b)
				err := b.Validate()

				convey.Convey("Then "+name+" is reported", func() {
					convey.So(errors.Is(err, model.ErrInvariant), convey.ShouldBeTrue)
				})
			}
		})
	})
}

func TestFeedbackRecord(t *testing.T) {
	convey.Convey("Given a feedback record", t, func() {
		f := model.FeedbackRecord{
			AnalysisID:     "swing-1",
			UserID:         "u-1",
			OverallVerdict: model.VerdictTooHigh,
			MetricVerdicts: map[string]model.Verdict{"grip": model.VerdictSlightlyLow},
			Confidence:     4,
			Priority:       model.PriorityAsNeeded,
			SkillLevel:     model.SkillAmateur,
		}

		convey.Convey("Then it validates and has a stable dedupe key", func() {
			convey.So(f.Validate(), convey.ShouldBeNil)
			convey.So(f.DedupeKey(), convey.ShouldEqual, "swing-1|u-1")
		})

		convey.Convey("Then verdict deltas follow the closed set", func() {
			d, ok := model.VerdictTooHigh.Delta()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(d, convey.ShouldEqual, -8)
			d, _ = model.VerdictSlightlyLow.Delta()
			convey.So(d, convey.ShouldEqual, 3)
			_, ok = model.Verdict("meh").Delta()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When confidence is out of range", func() {
			f.Confidence = 6
			convey.So(errors.Is(f.Validate(), model.ErrInvalidFeedback), convey.ShouldBeTrue)
		})

		convey.Convey("When a metric verdict is unknown", func() {
			f.MetricVerdicts["grip"] = "bad"
			convey.So(errors.Is(f.Validate(), model.ErrInvalidFeedback), convey.ShouldBeTrue)
		})

		convey.Convey("When the analysis id is missing", func() {
			f.AnalysisID = ""
			convey.So(errors.Is(f.Validate(), model.ErrInvalidFeedback), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given adjustment factors", t, func() {
		convey.So(model.AdjustmentFactors{}.IsZero(), convey.ShouldBeTrue)
		convey.So(model.AdjustmentFactors{Metrics: map[string]int{"grip": 0}}.IsZero(), convey.ShouldBeTrue)
		convey.So(model.AdjustmentFactors{Metrics: map[string]int{"grip": 2}}.IsZero(), convey.ShouldBeFalse)
	})
}
