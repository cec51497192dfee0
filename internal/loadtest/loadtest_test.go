package loadtest

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/swingcoach/internal/adapters/http/api"
	repository "github.com/okian/swingcoach/internal/adapters/repository"
	service "github.com/okian/swingcoach/internal/app"
	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	st, err := repository.Open(ctx, filepath.Join(t.TempDir(), "load.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc, err := service.New(metric.Default(), st, service.WithWorkerCount(2))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
		_ = st.Close()
	})
	return srv
}

func TestGenerateFeedback(t *testing.T) {
	convey.Convey("Given analysis ids and a fixed seed", t, func() {
		ids := []string{"a", "b", "c", "d", "e", "f"}
		cfg := &Config{Users: 2, DuplicateRate: 1}

		unique, dups := generateFeedback(ids, cfg, rand.New(rand.NewSource(3)))

		convey.Convey("Then every record is valid and keyed once per analysis", func() {
			convey.So(len(unique), convey.ShouldEqual, len(ids))
			seen := map[string]bool{}
			for _, rec := range unique {
				convey.So(rec.Validate(), convey.ShouldBeNil)
				convey.So(seen[rec.DedupeKey()], convey.ShouldBeFalse)
				seen[rec.DedupeKey()] = true
			}
			convey.So(unique[0].UserID, convey.ShouldEqual, "load-user-0")
			convey.So(unique[1].UserID, convey.ShouldEqual, "load-user-1")
		})

		convey.Convey("Then a full duplicate rate repeats everything", func() {
			convey.So(dups, convey.ShouldResemble, unique)
		})

		convey.Convey("Then the same seed produces the same verdicts", func() {
			again, _ := generateFeedback(ids, cfg, rand.New(rand.NewSource(3)))
			for i := range again {
				convey.So(again[i].OverallVerdict, convey.ShouldEqual, unique[i].OverallVerdict)
				convey.So(again[i].Confidence, convey.ShouldEqual, unique[i].Confidence)
			}
		})
	})
}

func TestExpectedFactors(t *testing.T) {
	convey.Convey("Given three confident too-high votes", t, func() {
		recs := []model.FeedbackRecord{
			{AnalysisID: "a", OverallVerdict: model.VerdictTooHigh, Confidence: 5},
			{AnalysisID: "b", OverallVerdict: model.VerdictTooHigh, Confidence: 5},
			{AnalysisID: "c", OverallVerdict: model.VerdictTooHigh, Confidence: 5,
				MetricVerdicts: map[string]model.Verdict{"downswing": model.VerdictTooLow}},
		}
		f := expectedFactors(recs, 3)
		convey.So(f.Overall, convey.ShouldEqual, -8)
		convey.So(f.Metrics["swingForward"], convey.ShouldEqual, 0)
		convey.So(sameMetrics(f.Metrics, map[string]int{}), convey.ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a fresh service behind a test server", t, func() {
		srv := startServer(t)
		cfg := &Config{
			BaseURL:       srv.URL,
			NumSwings:     12,
			Users:         3,
			Workers:       4,
			Timeout:       5 * time.Second,
			DuplicateRate: 0.5,
			MinSamples:    3,
			Settle:        5 * time.Second,
			Seed:          42,
			OutputFile:    filepath.Join(t.TempDir(), "out", "feedback.json"),
		}

		convey.Convey("When the load test runs", func() {
			stats, err := Run(context.Background(), cfg)

			convey.Convey("Then every swing is analyzed and every duplicate refused", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.AnalysesFailed, convey.ShouldEqual, 0)
				convey.So(stats.AnalysesMock, convey.ShouldEqual, 12)
				convey.So(stats.FeedbackRecorded, convey.ShouldEqual, 12)
				convey.So(stats.FeedbackFailed, convey.ShouldEqual, 0)
				convey.So(stats.FeedbackDuplicate, convey.ShouldEqual, stats.FeedbackSubmitted-12)
				convey.So(stats.ObservedOverall, convey.ShouldEqual, stats.ExpectedOverall)
			})
		})
	})

	convey.Convey("Given nothing listening", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, NumSwings: 1})
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestFanOut(t *testing.T) {
	convey.Convey("Given more items than workers", t, func() {
		items := make([]int, 50)
		for i := range items {
			items[i] = i
		}
		seen := make([]int, len(items))

		fanOut(context.Background(), 4, items, func(i, v int) { seen[i] = v * 2 })

		convey.Convey("Then every item is visited once at its own index", func() {
			for i, v := range seen {
				convey.So(v, convey.ShouldEqual, i*2)
			}
		})
	})

	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		fanOut(ctx, 0, []int{1, 2, 3}, func(int, int) { calls++ })
		convey.So(calls, convey.ShouldEqual, 0)
	})
}
