package style_test

import (
	"errors"
	"testing"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/style"
	. "github.com/smartystreets/goconvey/convey"
)

func baseStyle() model.PlayerStyle {
	return model.PlayerStyle{
		FingerCount:  2,
		SkillLevel:   model.SkillIntermediate,
		AimingFinger: model.AimRight,
	}
}

func TestWeight(t *testing.T) {
	Convey("Given a weighter", t, func() {
		w := style.NewWeighter()

		Convey("When weighting a two-finger intermediate right-handed player", func() {
			weights, err := w.Weight(baseStyle())
			So(err, ShouldBeNil)

			Convey("Then aim axes carry the two-finger bonus", func() {
				So(weights.PerAxis[model.AxisGeneral], ShouldAlmostEqual, 1.05, 1e-12)
				So(weights.PerAxis[model.AxisSniperScope], ShouldAlmostEqual, 1.05, 1e-12)
			})

			Convey("And free look carries only the skill multiplier", func() {
				So(weights.PerAxis[model.AxisFreeLook], ShouldEqual, 1.0)
			})
		})

		Convey("When the finger count grows", func() {
			prev, err := w.Weight(model.PlayerStyle{FingerCount: 1, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft})
			So(err, ShouldBeNil)

			Convey("Then no aim axis weight decreases up to four fingers", func() {
				for fingers := 2; fingers <= 4; fingers++ {
					s := model.PlayerStyle{FingerCount: fingers, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft}
					cur, err := w.Weight(s)
					So(err, ShouldBeNil)
					for _, axis := range model.Axes() {
						if axis.IsAim() {
							So(cur.PerAxis[axis], ShouldBeGreaterThanOrEqualTo, prev.PerAxis[axis])
						}
					}
					prev = cur
				}
			})

			Convey("And the fifth finger adds nothing", func() {
				four, _ := w.Weight(model.PlayerStyle{FingerCount: 4, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft})
				five, _ := w.Weight(model.PlayerStyle{FingerCount: 5, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft})
				So(five.PerAxis, ShouldResemble, four.PerAxis)
			})
		})

		Convey("When comparing skill levels", func() {
			levels := []model.SkillLevel{model.SkillBeginner, model.SkillIntermediate, model.SkillAdvanced, model.SkillPro}

			Convey("Then each step strictly raises the global multiplier", func() {
				prev := 0.0
				for _, level := range levels {
					s := baseStyle()
					s.SkillLevel = level
					weights, err := w.Weight(s)
					So(err, ShouldBeNil)
					So(weights.SkillMultiplier, ShouldBeGreaterThan, prev)
					prev = weights.SkillMultiplier
				}
			})
		})

		Convey("When the player uses a claw grip", func() {
			plain, _ := w.Weight(baseStyle())
			s := baseStyle()
			s.ClawGrip = true
			claw, err := w.Weight(s)
			So(err, ShouldBeNil)

			Convey("Then precision axes gain", func() {
				So(claw.PerAxis[model.AxisRedDot], ShouldBeGreaterThan, plain.PerAxis[model.AxisRedDot])
				So(claw.PerAxis[model.AxisScope4x], ShouldBeGreaterThan, plain.PerAxis[model.AxisScope4x])
			})

			Convey("And free look strictly loses", func() {
				So(claw.PerAxis[model.AxisFreeLook], ShouldBeLessThan, plain.PerAxis[model.AxisFreeLook])
			})

			Convey("And general is untouched", func() {
				So(claw.PerAxis[model.AxisGeneral], ShouldEqual, plain.PerAxis[model.AxisGeneral])
			})
		})

		Convey("When the player aims with the thumb", func() {
			plain, _ := w.Weight(baseStyle())
			s := baseStyle()
			s.AimingFinger = model.AimThumb
			thumb, err := w.Weight(s)
			So(err, ShouldBeNil)

			Convey("Then every axis is damped", func() {
				for axis, v := range plain.PerAxis {
					So(thumb.PerAxis[axis], ShouldAlmostEqual, v*0.95, 1e-12)
				}
			})

			Convey("And left-handed aiming is not damped", func() {
				s.AimingFinger = model.AimLeft
				left, _ := w.Weight(s)
				So(left.PerAxis, ShouldResemble, plain.PerAxis)
			})
		})
	})
}

func TestWeightRejectsInvalidStyles(t *testing.T) {
	Convey("Given malformed styles", t, func() {
		w := style.NewWeighter()
		cases := map[string]model.PlayerStyle{
			"zero fingers":  {FingerCount: 0, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft},
			"six fingers":   {FingerCount: 6, SkillLevel: model.SkillPro, AimingFinger: model.AimLeft},
			"unknown skill": {FingerCount: 2, SkillLevel: "legend", AimingFinger: model.AimLeft},
			"unknown aim":   {FingerCount: 2, SkillLevel: model.SkillPro, AimingFinger: "nose"},
		}
		for name, s := range cases {
			Convey("When weighting "+name, func() {
				_, err := w.Weight(s)
				So(errors.Is(err, model.ErrInvalidPlayerStyle), ShouldBeTrue)
			})
		}
	})
}

func TestFingerBonus(t *testing.T) {
	Convey("Given the finger bonus table", t, func() {
		So(style.FingerBonus(1), ShouldEqual, 1.00)
		So(style.FingerBonus(4), ShouldEqual, 1.15)
		So(style.FingerBonus(5), ShouldEqual, style.FingerBonus(4))
	})
}
