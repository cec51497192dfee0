package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with default options", func() {
			m := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the service namespace", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "swingcoach")
				So(m.subsystem, ShouldEqual, "analysis")
			})
		})

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("golf"),
				WithSubsystem("coach"),
				WithMetricPrefix("test"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(m.namespace, ShouldEqual, "golf")
				So(m.subsystem, ShouldEqual, "coach")
				So(m.metricPrefix, ShouldEqual, "test")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(m.Enabled(), ShouldBeFalse)
				So(m.refreshInterval, ShouldEqual, 5*time.Second)
				So(m.customLabels["env"], ShouldEqual, "test")
			})

			Convey("Then metric names carry the prefix", func() {
				m.analyses.WithLabelValues("llm").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "golf_coach_test_analyses_total")
			})
		})

		Convey("When empty option values are passed", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "swingcoach")
				So(m.subsystem, ShouldEqual, "analysis")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(m.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestAnalysisMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When analyses are recorded by source", func() {
			before := testutil.ToFloat64(globalManager.analyses.WithLabelValues("mock"))
			RecordAnalysis("mock")
			RecordAnalysis("mock")
			RecordAnalysis("llm")

			Convey("Then the labelled counter moves", func() {
				after := testutil.ToFloat64(globalManager.analyses.WithLabelValues("mock"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When a fallback is recorded", func() {
			before := testutil.ToFloat64(globalManager.fallbacks.WithLabelValues("timeout"))
			RecordFallback("timeout")

			Convey("Then the reason counter increments", func() {
				So(testutil.ToFloat64(globalManager.fallbacks.WithLabelValues("timeout"))-before, ShouldEqual, 1)
			})
		})

		Convey("When recomputed factors are reported", func() {
			RecordFactorsRecomputed(-4)

			Convey("Then the gauge reflects the latest delta", func() {
				So(testutil.ToFloat64(globalManager.factorsOverallGauge), ShouldEqual, -4)
			})
		})

		Convey("When feedback outcomes are recorded", func() {
			dup := testutil.ToFloat64(globalManager.feedbackDuplicate)
			RecordFeedbackRecorded()
			RecordFeedbackDuplicate()
			RecordFeedbackFailed()

			Convey("Then the duplicate counter moves", func() {
				So(testutil.ToFloat64(globalManager.feedbackDuplicate)-dup, ShouldEqual, 1)
			})
		})
	})
}

func TestOperationalMetrics(t *testing.T) {
	Convey("Given operational recorders", t, func() {
		Convey("Then none of them panic", func() {
			So(func() {
				RecordLLMLatency("score", 1200)
				RecordLLMError("timeout")
				RecordAdjustmentApplied()
				RecordAdjustmentSkipped("never")
				RecordConsistencyBlend()
				RecordHistoryAppend()
				RecordInsight("default")
				RecordHTTPRequest("/analyses", "POST", "200")
				RecordHTTPRequestDuration("/analyses", "POST", "200", 15)
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(4)
				RecordWorkerError()
				RecordErrorByComponent("llm", "timeout")
				RecordErrorByType("timeout", "error")
				RecordErrorByEndpoint("/feedback", "POST", "duplicate")
				RecordErrorLatency("llm", "timeout", 120000)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry gathers them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestDisabledRecording(t *testing.T) {
	Convey("Given recording switched off", t, func() {
		SetEnabled(false)
		Reset(func() { SetEnabled(true) })
		So(Enabled(), ShouldBeFalse)

		before := testutil.ToFloat64(globalManager.fallbacks.WithLabelValues("no_video"))
		RecordFallback("no_video")
		UpdateQueueSize(77)

		Convey("Then counters and gauges stay put", func() {
			So(testutil.ToFloat64(globalManager.fallbacks.WithLabelValues("no_video")), ShouldEqual, before)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldNotEqual, 77)
		})

		Convey("Then switching it back on resumes recording", func() {
			SetEnabled(true)
			RecordFallback("no_video")
			So(testutil.ToFloat64(globalManager.fallbacks.WithLabelValues("no_video"))-before, ShouldEqual, 1)
		})
	})

	Convey("Given a refresh interval override", t, func() {
		prev := RefreshInterval()
		Reset(func() { SetRefreshInterval(prev) })

		SetRefreshInterval(3 * time.Second)
		So(RefreshInterval(), ShouldEqual, 3*time.Second)
		SetRefreshInterval(0)
		So(RefreshInterval(), ShouldEqual, 3*time.Second)
	})
}
