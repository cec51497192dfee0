package video_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/internal/domain/video"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSignatures(t *testing.T) {
	Convey("Given a local file", t, func() {
		f := &model.VideoFile{Name: "range.mov", Size: 2048, ModTime: time.UnixMilli(1700000000123)}

		Convey("Then its signature combines name, size and mtime", func() {
			So(video.FileSignature(f), ShouldEqual, "file:range.mov:2048:1700000000123")
		})

		Convey("Then a nil file has no signature", func() {
			So(video.FileSignature(nil), ShouldEqual, "")
		})
	})

	Convey("Given a hosted id", t, func() {
		So(video.HostedSignature("abc123"), ShouldEqual, "hosted:abc123")
		So(video.EmbedURL("abc123"), ShouldEqual, "https://www.youtube.com/embed/abc123")
	})
}

func TestHosted(t *testing.T) {
	Convey("Given the default template", t, func() {
		h, err := video.NewHosted("")
		So(err, ShouldBeNil)

		Convey("When building a URI", func() {
			uri, err := h.URI("dQw4w9WgXcQ")
			So(err, ShouldBeNil)
			So(uri, ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		})

		Convey("When the id is blank", func() {
			_, err := h.URI("  ")
			So(errors.Is(err, video.ErrEmptyHostedID), ShouldBeTrue)
		})

		Convey("When building a reference", func() {
			ref := h.Ref("xyz")
			So(ref.Kind, ShouldEqual, model.VideoHosted)
			So(ref.Signature, ShouldEqual, "hosted:xyz")
			So(ref.EmbedURL, ShouldEqual, "https://www.youtube.com/embed/xyz")
		})
	})

	Convey("Given malformed templates", t, func() {
		_, err := video.NewHosted("https://example.com/watch")
		So(errors.Is(err, video.ErrInvalidTemplate), ShouldBeTrue)
		_, err = video.NewHosted("https://example.com/%s/%d")
		So(errors.Is(err, video.ErrInvalidTemplate), ShouldBeTrue)
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a display URL registry", t, func() {
		r := video.NewRegistry()
		f := &model.VideoFile{Name: "a.mp4", Size: 10, ModTime: time.UnixMilli(5)}

		Convey("When a file is registered", func() {
			ref := r.Register(f)

			Convey("Then it gets a unique blob URL and a file signature", func() {
				So(strings.HasPrefix(ref.DisplayURL, "blob:swingcoach/"), ShouldBeTrue)
				So(ref.Kind, ShouldEqual, model.VideoLocal)
				So(ref.Signature, ShouldEqual, "file:a.mp4:10:5")
				So(r.Register(f).DisplayURL, ShouldNotEqual, ref.DisplayURL)
			})

			Convey("Then it can be released exactly once", func() {
				So(r.Release(ref.DisplayURL), ShouldBeNil)
				So(errors.Is(r.Release(ref.DisplayURL), video.ErrUnknownURL), ShouldBeTrue)
				So(r.Len(), ShouldEqual, 0)
			})
		})

		Convey("When several files are registered and released together", func() {
			for i := 0; i < 3; i++ {
				r.Register(f)
			}
			So(r.ReleaseAll(), ShouldEqual, 3)
			So(r.Len(), ShouldEqual, 0)
		})
	})
}

func TestIDGenerator(t *testing.T) {
	Convey("Given an id generator used concurrently", t, func() {
		g := video.NewIDGenerator()
		var mu sync.Mutex
		seen := make(map[string]bool)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		Convey("Then every id is unique and prefixed", func() {
			So(len(seen), ShouldEqual, 50)
			for id := range seen {
				So(strings.HasPrefix(id, "swing-"), ShouldBeTrue)
			}
		})
	})
}
