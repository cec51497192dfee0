package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/okian/swingcoach/internal/adapters/llm"
	"github.com/okian/swingcoach/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeModels struct {
	text     string
	err      error
	wait     time.Duration
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, name string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = name, contents, cfg
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGenerate(t *testing.T) {
	Convey("Given a client over a fake generator", t, func() {
		ctx := context.Background()
		fake := &fakeModels{text: `{"overallScore": 70}`}
		c := llm.NewWithGenerator(fake, llm.WithModel("gemini-test"), llm.WithMaxInlineBytes(16), llm.WithJSONResponses(true))

		Convey("When sending inline video bytes", func() {
			text, err := c.Generate(ctx, model.LLMRequest{
				Op:          "scoring",
				Prompt:      "score this",
				Video:       &model.VideoFile{Name: "a.mov", MIMEType: "video/quicktime", Data: []byte("0123456789")},
				Temperature: 0.5,
			})

			Convey("Then the video part precedes the prompt", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, `{"overallScore": 70}`)
				So(fake.model, ShouldEqual, "gemini-test")
				parts := fake.contents[0].Parts
				So(len(parts), ShouldEqual, 2)
				So(parts[0].InlineData.MIMEType, ShouldEqual, "video/quicktime")
				So(string(parts[0].InlineData.Data), ShouldEqual, "0123456789")
				So(parts[1].Text, ShouldEqual, "score this")
				So(*fake.config.Temperature, ShouldEqual, float32(0.5))
				So(fake.config.ResponseMIMEType, ShouldEqual, "application/json")
			})
		})

		Convey("When referencing a hosted video", func() {
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p", VideoURI: "https://www.youtube.com/watch?v=abc", MaxTokens: 256})
			So(err, ShouldBeNil)
			So(fake.contents[0].Parts[0].FileData.FileURI, ShouldEqual, "https://www.youtube.com/watch?v=abc")
			So(fake.config.MaxOutputTokens, ShouldEqual, int32(256))
		})

		Convey("When the inline video is larger than allowed", func() {
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p", Video: &model.VideoFile{Data: make([]byte, 17)}})
			So(errors.Is(err, llm.ErrSizeRejected), ShouldBeTrue)
			So(llm.Kind(err), ShouldEqual, "size_rejected")
			So(fake.contents, ShouldBeNil)
		})

		Convey("When the inline video has no bytes", func() {
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p", Video: &model.VideoFile{Name: "empty.mp4"}})
			So(errors.Is(err, llm.ErrEncoding), ShouldBeTrue)
		})

		Convey("When the provider rejects the payload size", func() {
			fake.err = genai.APIError{Code: 413, Message: "too large"}
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p"})
			So(errors.Is(err, llm.ErrSizeRejected), ShouldBeTrue)
		})

		Convey("When the provider fails", func() {
			fake.err = genai.APIError{Code: 503, Message: "unavailable"}
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p"})
			So(errors.Is(err, llm.ErrServer), ShouldBeTrue)
			So(llm.Kind(err), ShouldEqual, "server")
		})

		Convey("When the request is refused", func() {
			fake.err = genai.APIError{Code: 400, Message: "bad request"}
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p"})
			So(errors.Is(err, llm.ErrTransport), ShouldBeTrue)
		})

		Convey("When the call outlives its deadline", func() {
			fake.wait = time.Second
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p", Timeout: 10 * time.Millisecond})
			So(errors.Is(err, llm.ErrTimeout), ShouldBeTrue)
			So(llm.Kind(err), ShouldEqual, "timeout")
		})

		Convey("When the model returns blank text", func() {
			fake.text = "  "
			_, err := c.Generate(ctx, model.LLMRequest{Prompt: "p"})
			So(errors.Is(err, llm.ErrEmptyResponse), ShouldBeTrue)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given no API key", t, func() {
		_, err := llm.New(context.Background(), " ")
		So(errors.Is(err, llm.ErrAPIKeyMissing), ShouldBeTrue)
		So(llm.Kind(err), ShouldEqual, "api_key_missing")
	})

	Convey("Given unclassified errors", t, func() {
		So(llm.Kind(nil), ShouldEqual, "")
		So(llm.Kind(errors.New("boom")), ShouldEqual, "transport")
		So(llm.Kind(context.DeadlineExceeded), ShouldEqual, "timeout")
	})
}
