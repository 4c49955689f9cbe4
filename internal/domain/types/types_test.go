package types_test

import (
	"errors"
	"testing"

	"github.com/okian/aimtune/internal/domain/model"
	types "github.com/okian/aimtune/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRating(t *testing.T) {
	Convey("Given rating labels", t, func() {
		Convey("Then the three verdicts map to -2, +2 and 0", func() {
			for label, want := range map[string]int{
				"too-high":   -2,
				"Too Low":    2,
				"just_right": 0,
			} {
				got, err := types.ParseRating(label)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("And numbers inside [-2, 2] pass through", func() {
			got, err := types.ParseRating("-1")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, -1)
		})

		Convey("And anything else is invalid feedback", func() {
			for _, bad := range []string{"3", "meh", ""} {
				_, err := types.ParseRating(bad)
				So(errors.Is(err, model.ErrInvalidFeedback), ShouldBeTrue)
			}
		})
	})
}

func TestFeedbackInputDelta(t *testing.T) {
	Convey("Given a feedback input", t, func() {
		Convey("When only a numeric delta is set", func() {
			in := types.FeedbackInput{ResultID: "r", RatingDelta: 1}

			Convey("Then it is used", func() {
				d, err := in.Delta()
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 1)
			})
		})

		Convey("When a label is also set", func() {
			in := types.FeedbackInput{ResultID: "r", RatingDelta: 1, Rating: "too-high"}

			Convey("Then the label wins", func() {
				d, err := in.Delta()
				So(err, ShouldBeNil)
				So(d, ShouldEqual, -2)
			})
		})

		Convey("When the delta is out of range", func() {
			in := types.FeedbackInput{ResultID: "r", RatingDelta: 5}

			Convey("Then it is rejected", func() {
				_, err := in.Delta()
				So(errors.Is(err, model.ErrInvalidFeedback), ShouldBeTrue)
			})
		})
	})
}
