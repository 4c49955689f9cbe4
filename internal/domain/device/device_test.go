package device_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/aimtune/internal/domain/device"
	"github.com/okian/aimtune/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func phone() model.DeviceProfile {
	return model.DeviceProfile{
		ResolutionWidth:  1080,
		ResolutionHeight: 2400,
		DPI:              440,
		RefreshRateHz:    90,
	}
}

func TestNormalize(t *testing.T) {
	Convey("Given a normalizer calibrated on the reference device", t, func() {
		n := device.NewNormalizer()

		Convey("When normalizing a 1080x2400 440dpi 90Hz phone", func() {
			factors, err := n.Normalize(phone())
			So(err, ShouldBeNil)

			Convey("Then the DPI factor follows the screen diagonal", func() {
				diagonal := math.Sqrt(1080*1080+2400*2400) / 440
				So(factors.DPIFactor, ShouldAlmostEqual, diagonal/6.67, 1e-9)
				So(factors.DPIFactor, ShouldAlmostEqual, 0.8968, 1e-3)
			})

			Convey("And the refresh factor sits on the 90Hz plateau", func() {
				So(factors.RefreshFactor, ShouldEqual, 1.1)
			})

			Convey("And camera axes carry dpi times refresh", func() {
				So(factors.PerAxis[model.AxisGeneral], ShouldAlmostEqual, factors.DPIFactor*1.1, 1e-12)
				So(factors.PerAxis[model.AxisFreeLook], ShouldAlmostEqual, factors.DPIFactor*1.1, 1e-12)
			})

			Convey("And gyro axes are absent, not zero", func() {
				_, ok := factors.PerAxis[model.AxisGyroGeneral]
				So(ok, ShouldBeFalse)
				_, ok = factors.PerAxis[model.AxisGyroScope]
				So(ok, ShouldBeFalse)
				So(factors.GyroEnabled, ShouldBeFalse)
			})
		})

		Convey("When the device has a gyroscope", func() {
			p := phone()
			p.HasGyro = true
			factors, err := n.Normalize(p)
			So(err, ShouldBeNil)

			Convey("Then gyro axes get full weight", func() {
				So(factors.PerAxis[model.AxisGyroGeneral], ShouldEqual, 1.0)
				So(factors.PerAxis[model.AxisGyroScope], ShouldEqual, 1.0)
			})
		})

		Convey("When the screen is extremely dense or sparse", func() {
			dense := model.DeviceProfile{ResolutionWidth: 100, ResolutionHeight: 100, DPI: 5000, RefreshRateHz: 60}
			sparse := model.DeviceProfile{ResolutionWidth: 4000, ResolutionHeight: 8000, DPI: 100, RefreshRateHz: 60}

			Convey("Then the DPI factor is clamped to [0.5, 1.5]", func() {
				So(n.DPIFactor(dense), ShouldEqual, 0.5)
				So(n.DPIFactor(sparse), ShouldEqual, 1.5)
			})
		})

		Convey("When every factor is inspected", func() {
			for _, hz := range []int{30, 60, 75, 90, 120, 144, 240} {
				p := phone()
				p.RefreshRateHz = hz
				p.HasGyro = true
				factors, err := n.Normalize(p)
				So(err, ShouldBeNil)
				for _, v := range factors.PerAxis {
					So(v, ShouldBeBetweenOrEqual, 0, 2)
				}
			}
		})
	})
}

func TestRefreshFactor(t *testing.T) {
	Convey("Given refresh rates across the breakpoints", t, func() {
		So(device.RefreshFactor(30), ShouldEqual, 0.9)
		So(device.RefreshFactor(59), ShouldEqual, 0.9)
		So(device.RefreshFactor(60), ShouldEqual, 1.0)
		So(device.RefreshFactor(89), ShouldEqual, 1.0)
		So(device.RefreshFactor(90), ShouldEqual, 1.1)
		So(device.RefreshFactor(120), ShouldEqual, 1.2)
		So(device.RefreshFactor(144), ShouldEqual, 1.3)
		So(device.RefreshFactor(500), ShouldEqual, 1.3)

		Convey("Then the factor never decreases as the rate grows", func() {
			prev := device.RefreshFactor(1)
			for hz := 2; hz <= 300; hz++ {
				cur := device.RefreshFactor(hz)
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})
	})
}

func TestNormalizeRejectsInvalidProfiles(t *testing.T) {
	Convey("Given malformed device profiles", t, func() {
		n := device.NewNormalizer()
		cases := map[string]model.DeviceProfile{
			"zero width":    {ResolutionWidth: 0, ResolutionHeight: 2400, DPI: 440, RefreshRateHz: 60},
			"negative high": {ResolutionWidth: 1080, ResolutionHeight: -1, DPI: 440, RefreshRateHz: 60},
			"zero dpi":      {ResolutionWidth: 1080, ResolutionHeight: 2400, DPI: 0, RefreshRateHz: 60},
			"nan dpi":       {ResolutionWidth: 1080, ResolutionHeight: 2400, DPI: math.NaN(), RefreshRateHz: 60},
			"zero refresh":  {ResolutionWidth: 1080, ResolutionHeight: 2400, DPI: 440, RefreshRateHz: 0},
		}

		for name, p := range cases {
			Convey("When normalizing "+name, func() {
				_, err := n.Normalize(p)

				Convey("Then it fails with ErrInvalidDeviceProfile", func() {
					So(errors.Is(err, model.ErrInvalidDeviceProfile), ShouldBeTrue)
				})
			})
		}
	})
}

func TestReferenceDeviceOption(t *testing.T) {
	Convey("Given a normalizer calibrated on the test phone itself", t, func() {
		p := phone()
		n := device.NewNormalizer(device.WithReferenceDevice(p.DPI, device.DiagonalInches(p)))

		Convey("Then the phone maps to a neutral DPI factor", func() {
			So(n.DPIFactor(p), ShouldAlmostEqual, 1.0, 1e-12)
		})
	})
}
