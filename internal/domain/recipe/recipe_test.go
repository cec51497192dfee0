package recipe_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/swingcoach/internal/domain/recipe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecipeBook(t *testing.T) {
	Convey("Given the built-in book", t, func() {
		b := recipe.Builtin()

		Convey("Then core metrics have entries", func() {
			e, ok := b.Lookup("shallowing")
			So(ok, ShouldBeTrue)
			So(e.Summary, ShouldNotBeBlank)
			So(len(e.Drills), ShouldBeGreaterThan, 0)
			So(b.Len(), ShouldBeGreaterThanOrEqualTo, 10)
		})

		Convey("Then unknown metrics miss", func() {
			_, ok := b.Lookup("putterLoft")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a custom recipe file", t, func() {
		path := filepath.Join(t.TempDir(), "recipes.yaml")
		So(os.WriteFile(path, []byte("recipes:\n  - metric: grip\n    summary: soft hands\n    feel_cues: [light]\n  - metric: ''\n"), 0o600), ShouldBeNil)

		b, err := recipe.LoadOrBuiltin(path)
		So(err, ShouldBeNil)

		Convey("Then only keyed entries load", func() {
			So(b.Len(), ShouldEqual, 1)
			e, _ := b.Lookup("grip")
			So(e.FeelCues, ShouldResemble, []string{"light"})
		})
	})

	Convey("Given broken inputs", t, func() {
		_, err := recipe.Parse([]byte("recipes: ["))
		So(err, ShouldNotBeNil)

		_, err = recipe.Parse([]byte("recipes: []"))
		So(errors.Is(err, recipe.ErrEmptyBook), ShouldBeTrue)

		_, err = recipe.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldNotBeNil)

		var nilBook *recipe.Book
		_, ok := nilBook.Lookup("grip")
		So(ok, ShouldBeFalse)
	})

	Convey("Given no path", t, func() {
		b, err := recipe.LoadOrBuiltin("")
		So(err, ShouldBeNil)
		So(b.Len(), ShouldBeGreaterThan, 1)
	})
}
