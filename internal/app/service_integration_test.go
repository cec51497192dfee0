package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	repository "github.com/okian/swingcoach/internal/adapters/repository"
	service "github.com/okian/swingcoach/internal/app"
	"github.com/okian/swingcoach/internal/domain/metric"
	"github.com/okian/swingcoach/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitForFactors(ctx context.Context, svc *service.Service, want int) model.AdjustmentFactors {
	deadline := time.Now().Add(3 * time.Second)
	for {
		f, err := svc.Adjustments(ctx)
		if err == nil && f.Overall == want {
			return f
		}
		if time.Now().After(deadline) {
			return f
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedbackLoop(t *testing.T) {
	Convey("Given a started service over a real store", t, func() {
		ctx := context.Background()
		st := openStore(t)
		svc := newService(t, st, service.WithLLM(&fakeLLM{}), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		hosted := model.Submission{Metadata: model.Metadata{HostedVideoID: "abc123", UserID: "u1"}}
		before := svc.Analyze(ctx, hosted)
		So(before.OverallScore, ShouldEqual, 73)

		Convey("When three confident too-high verdicts arrive", func() {
			for i := 0; i < 3; i++ {
				rec := model.FeedbackRecord{
					AnalysisID:     fmt.Sprintf("swing-%d", i),
					UserID:         "u1",
					OverallVerdict: model.VerdictTooHigh,
					Confidence:     5,
				}
				if i == 0 {
					rec.Priority = model.PriorityAlways
				}
				ok, err := svc.SubmitFeedback(ctx, rec)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}

			Convey("Then the workers learn a negative overall factor", func() {
				f := waitForFactors(ctx, svc, -8)
				So(f.Overall, ShouldEqual, -8)
				So(f.Samples, ShouldEqual, 3)
			})

			Convey("Then the user's next analysis is corrected", func() {
				waitForFactors(ctx, svc, -8)
				after := svc.Analyze(ctx, hosted)
				So(after.OverallScore, ShouldEqual, 65)
				So(after.Validate(), ShouldBeNil)
			})

			Convey("Then a user who never opted in is left alone", func() {
				_, err := svc.SubmitFeedback(ctx, model.FeedbackRecord{
					AnalysisID: "swing-9", UserID: "u2", OverallVerdict: model.VerdictAccurate,
					Confidence: 1, Priority: model.PriorityNever,
				})
				So(err, ShouldBeNil)
				f, err := svc.RecomputeAdjustments(ctx)
				So(err, ShouldBeNil)
				So(f.Overall, ShouldBeLessThan, 0)

				other := svc.Analyze(ctx, model.Submission{Metadata: model.Metadata{HostedVideoID: "abc123", UserID: "u2"}})
				So(other.OverallScore, ShouldEqual, 73)
			})
		})

		Convey("When the same feedback is submitted twice", func() {
			rec := model.FeedbackRecord{AnalysisID: "swing-1", UserID: "u1", OverallVerdict: model.VerdictAccurate, Confidence: 3}
			ok, err := svc.SubmitFeedback(ctx, rec)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = svc.SubmitFeedback(ctx, rec)
			So(ok, ShouldBeFalse)
			So(errors.Is(err, repository.ErrDuplicateFeedback), ShouldBeTrue)

			Convey("Then a restarted service still rejects it", func() {
				restarted := newService(t, st)
				So(restarted.Start(ctx), ShouldBeNil)
				defer restarted.Stop()

				_, err := restarted.SubmitFeedback(ctx, rec)
				So(errors.Is(err, repository.ErrDuplicateFeedback), ShouldBeTrue)
				n, err := st.CountFeedback(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When anonymous feedback arrives twice for one analysis", func() {
			rec := model.FeedbackRecord{AnalysisID: "swing-1", OverallVerdict: model.VerdictAccurate, Confidence: 3}
			first, err := svc.SubmitFeedback(ctx, rec)
			So(err, ShouldBeNil)
			second, err := svc.SubmitFeedback(ctx, rec)
			So(err, ShouldBeNil)

			Convey("Then both are recorded", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeTrue)
				n, err := st.CountFeedback(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When feedback is malformed", func() {
			ok, err := svc.SubmitFeedback(ctx, model.FeedbackRecord{AnalysisID: "x", OverallVerdict: "meh", Confidence: 3})
			So(ok, ShouldBeFalse)
			So(errors.Is(err, model.ErrInvalidFeedback), ShouldBeTrue)
		})
	})
}

type readOnlyStore struct {
	*repository.SQLiteStore
	inserts int
}

func (r *readOnlyStore) InsertFeedback(context.Context, model.FeedbackRecord) error {
	r.inserts++
	return fmt.Errorf("%w: attempt to write a readonly database", repository.ErrStoragePermission)
}

func TestStoragePermission(t *testing.T) {
	Convey("Given a store that refuses writes", t, func() {
		ctx := context.Background()
		st := &readOnlyStore{SQLiteStore: openStore(t)}
		svc, err := service.New(metric.Default(), st)
		So(err, ShouldBeNil)
		rec := model.FeedbackRecord{AnalysisID: "swing-1", OverallVerdict: model.VerdictAccurate, Confidence: 2}

		Convey("Then the failure surfaces and the key is released for retry", func() {
			ok, err := svc.SubmitFeedback(ctx, rec)
			So(ok, ShouldBeFalse)
			So(errors.Is(err, repository.ErrStoragePermission), ShouldBeTrue)

			_, err = svc.SubmitFeedback(ctx, rec)
			So(errors.Is(err, repository.ErrStoragePermission), ShouldBeTrue)
			So(st.inserts, ShouldEqual, 2)
		})
	})
}
