package loadtest

import (
	"math/rand/v2"

	"github.com/okian/aimtune/internal/domain/model"
)

var (
	resolutions = [][2]int{{720, 1600}, {1080, 2340}, {1080, 2400}, {1170, 2532}, {1440, 3200}, {1536, 2048}}
	dpis        = []float64{270, 326, 401, 440, 458, 515}
	refreshes   = []int{60, 90, 120, 144}
	skills      = []model.SkillLevel{model.SkillBeginner, model.SkillIntermediate, model.SkillAdvanced, model.SkillPro}
	fingers     = []model.AimingFinger{model.AimLeft, model.AimRight, model.AimThumb}
	ratings     = []string{"too-high", "too-low", "just-right", "-1", "1"}
)

// Generator produces calculation requests across a game table.
type Generator struct {
	rng   *rand.Rand
	games []model.GameProfile
}

// NewGenerator creates a generator seeded with seed. The same seed and games
// always produce the same sequence.
func NewGenerator(seed uint64, games []model.GameProfile) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		games: games,
	}
}

// Request returns the next calculation request. Roughly one in twenty is
// deliberately invalid so the error path is exercised too.
func (g *Generator) Request() (model.CalculationRequest, bool) {
	game := g.games[g.rng.IntN(len(g.games))]
	res := resolutions[g.rng.IntN(len(resolutions))]

	req := model.CalculationRequest{
		GameID: game.GameID,
		Device: model.DeviceProfile{
			ResolutionWidth:  res[0],
			ResolutionHeight: res[1],
			DPI:              dpis[g.rng.IntN(len(dpis))],
			RefreshRateHz:    refreshes[g.rng.IntN(len(refreshes))],
			HasGyro:          g.rng.IntN(2) == 0,
		},
		Style: model.PlayerStyle{
			FingerCount:  1 + g.rng.IntN(5),
			SkillLevel:   skills[g.rng.IntN(len(skills))],
			AimingFinger: fingers[g.rng.IntN(len(fingers))],
			ClawGrip:     g.rng.IntN(3) == 0,
		},
	}
	if len(game.Modes) > 0 && g.rng.IntN(2) == 0 {
		req.Mode = game.Modes[g.rng.IntN(len(game.Modes))]
	}

	if g.rng.IntN(20) == 0 {
		req.Style.FingerCount = 9
		return req, false
	}
	return req, true
}

// Rating returns a random feedback rating label or number.
func (g *Generator) Rating() string {
	return ratings[g.rng.IntN(len(ratings))]
}

// Pick reports true with probability p.
func (g *Generator) Pick(p float64) bool {
	return g.rng.Float64() < p
}
