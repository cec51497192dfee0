package parse_test

import (
	"errors"
	"testing"

	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/parse"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtract(t *testing.T) {
	Convey("Given model text in different wrappers", t, func() {
		Convey("Then a bare object parses directly", func() {
			obj, ok := parse.Extract(`{"a":1}`)
			So(ok, ShouldBeTrue)
			So(string(obj["a"]), ShouldEqual, "1")
		})

		Convey("Then a labelled fence in prose parses", func() {
			_, ok := parse.Extract("Here you go:\n```json\n{\"a\":1}\n```\nThanks")
			So(ok, ShouldBeTrue)
		})

		Convey("Then an unlabelled fence parses", func() {
			_, ok := parse.Extract("```\n{\"a\":1}\n```")
			So(ok, ShouldBeTrue)
		})

		Convey("Then braces inside prose parse", func() {
			obj, ok := parse.Extract(`The result is {"a": {"b": 2}} as requested.`)
			So(ok, ShouldBeTrue)
			So(string(obj["a"]), ShouldEqual, `{"b": 2}`)
		})

		Convey("Then arrays, empty text and garbage fail", func() {
			for _, s := range []string{"", "   ", "[1,2]", "no json here", "{broken", "} backwards {"} {
				_, ok := parse.Extract(s)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestAnalysis(t *testing.T) {
	reg := metric.Default()

	Convey("Given a fenced scoring response", t, func() {
		text := "```json\n{\"overallScore\":55,\"metrics\":{\"grip\":55},\"recommendations\":[\"x\"]}\n```"
		s, err := parse.Analysis(reg, text)

		Convey("Then scores come through and recommendations are padded", func() {
			So(err, ShouldBeNil)
			So(s.Overall, ShouldEqual, 55)
			So(s.Metrics["grip"], ShouldEqual, 55)
			So(len(s.Recommendations), ShouldBeBetweenOrEqual, 1, 3)
			So(s.Recommendations[0], ShouldEqual, "x")
		})
	})

	Convey("Given aliased and unknown metric keys", t, func() {
		text := `{"overallScore": 70.6, "metrics": {"downswing": 66, "swingForward": 72, "clubTrajectoryBackswing": 61, "swingBack": 64, "putterLoft": 90, "notes": "n/a"}, "recommendations": []}`
		s, err := parse.Analysis(reg, text)
		So(err, ShouldBeNil)

		Convey("Then registered keys win and unknowns are dropped", func() {
			So(s.Overall, ShouldEqual, 71)
			So(s.Metrics["swingForward"], ShouldEqual, 72)
			So(s.Metrics["backswing"], ShouldEqual, 61)
			So(s.Metrics["swingBack"], ShouldEqual, 64)
			So(s.Metrics, ShouldNotContainKey, "downswing")
			So(s.Metrics, ShouldNotContainKey, "putterLoft")
			So(s.Metrics, ShouldNotContainKey, "notes")
			So(s.Dropped, ShouldContain, "putterLoft")
			So(s.Recommendations, ShouldResemble, parse.DefaultRecommendations)
		})
	})

	Convey("Given too many recommendations", t, func() {
		s, err := parse.Analysis(reg, `{"overallScore":60,"metrics":{},"recommendations":["a","b"," ","c","d"]}`)
		So(err, ShouldBeNil)
		So(s.Recommendations, ShouldResemble, []string{"a", "b", "c"})
	})

	Convey("Given responses missing required fields", t, func() {
		_, err := parse.Analysis(reg, `{"metrics":{"grip":50}}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)

		_, err = parse.Analysis(reg, `{"overallScore":"high","metrics":{"grip":50}}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)

		_, err = parse.Analysis(reg, `{"overallScore":50}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)

		_, err = parse.Analysis(reg, `{"overallScore":50,"metrics":[1,2]}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)
	})

	Convey("Given text with no JSON", t, func() {
		_, err := parse.Analysis(reg, "I could not see the golfer.")
		So(errors.Is(err, parse.ErrUnparseable), ShouldBeTrue)
	})
}

func TestNormalizeRecommendations(t *testing.T) {
	Convey("Given duplicate and blank entries", t, func() {
		out := parse.NormalizeRecommendations([]string{" turn more ", "turn more", ""})
		So(out[0], ShouldEqual, "turn more")
		So(len(out), ShouldEqual, 3)
		So(out[1], ShouldEqual, parse.DefaultRecommendations[0])
	})
}

func TestInsights(t *testing.T) {
	Convey("Given a complete insight payload", t, func() {
		in, err := parse.Insights(`{"goodAspects":["solid"],"improvementAreas":["tempo"],"technicalBreakdown":["Video unclear"],"recommendations":["drill"],"feelTips":["smooth", 3]}`)
		So(err, ShouldBeNil)
		So(in.GoodAspects, ShouldResemble, []string{"solid"})
		So(in.TechnicalBreakdown[0], ShouldEqual, "Video unclear")
		So(in.FeelTips, ShouldResemble, []string{"smooth"})
	})

	Convey("Given feelTips omitted", t, func() {
		in, err := parse.Insights(`{"goodAspects":[],"improvementAreas":["a"],"technicalBreakdown":["b"],"recommendations":["c"]}`)
		So(err, ShouldBeNil)
		So(in.FeelTips, ShouldBeNil)
		So(in.GoodAspects, ShouldBeEmpty)
	})

	Convey("Given a mandatory array missing or malformed", t, func() {
		_, err := parse.Insights(`{"goodAspects":["a"],"improvementAreas":["a"],"recommendations":["c"]}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)

		_, err = parse.Insights(`{"goodAspects":"a","improvementAreas":["a"],"technicalBreakdown":["b"],"recommendations":["c"]}`)
		So(errors.Is(err, parse.ErrMissingFields), ShouldBeTrue)

		_, err = parse.Insights("nothing")
		So(errors.Is(err, parse.ErrUnparseable), ShouldBeTrue)
	})
}
