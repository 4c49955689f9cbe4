package i18n_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"

	"github.com/okian/aimtune/internal/i18n"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultBundle(t *testing.T) {
	Convey("Given the embedded catalogs", t, func() {
		b := i18n.Default()

		Convey("Then English comes first among the shipped locales", func() {
			So(b.Locales(), ShouldResemble, []string{"en", "de", "es", "fr", "pt"})
		})

		Convey("When resolving languages", func() {
			So(b.Tag(""), ShouldEqual, language.English)
			So(b.Tag("es"), ShouldEqual, language.Spanish)
			So(b.Tag("pt-BR"), ShouldEqual, language.Portuguese)
			So(b.Tag("zh"), ShouldEqual, language.English)
			So(b.Tag("not a tag"), ShouldEqual, language.English)
		})

		Convey("When printing a translated message", func() {
			So(b.Printer("en").Sprintf("calc.title", "PUBG Mobile"), ShouldEqual, "Recommended sensitivity for PUBG Mobile")
			So(b.Printer("es").Sprintf("calc.title", "PUBG Mobile"), ShouldEqual, "Sensibilidad recomendada para PUBG Mobile")
			So(b.Printer("de").Sprintf("clear.done"), ShouldEqual, "Verlauf gelöscht")
		})

		Convey("When the language has no catalog", func() {
			So(b.Printer("ja").Sprintf("history.empty"), ShouldEqual, "No feedback yet")
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a catalog with a key missing in Spanish", t, func() {
		fsys := fstest.MapFS{
			"locales/en.yaml": {Data: []byte("greet: \"hello %s\"\nbye: \"bye\"\n")},
			"locales/es.yaml": {Data: []byte("greet: \"hola %s\"\n")},
		}
		b, err := i18n.Load(fsys)
		So(err, ShouldBeNil)

		Convey("Then the missing key falls back to English", func() {
			So(b.Printer("es").Sprintf("greet", "ana"), ShouldEqual, "hola ana")
			So(b.Printer("es").Sprintf("bye"), ShouldEqual, "bye")
		})
	})

	Convey("Given malformed catalogs", t, func() {
		cases := map[string]fstest.MapFS{
			"no english":    {"locales/es.yaml": {Data: []byte("a: b\n")}},
			"bad yaml":      {"locales/en.yaml": {Data: []byte("a: [\n")}},
			"empty":         {"locales/en.yaml": {Data: []byte("")}},
			"bad file name": {"locales/en.yaml": {Data: []byte("a: b\n")}, "locales/x!y.yaml": {Data: []byte("a: b\n")}},
			"no files":      {},
		}
		for name, fsys := range cases {
			_, err := i18n.Load(fsys)
			SoMsg(name, errors.Is(err, i18n.ErrInvalidCatalog), ShouldBeTrue)
		}
	})
}
