package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	service "github.com/okian/aimtune/internal/app"
	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
)

// --- calculate ---

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Compute per-axis sensitivity",
	Long: `Compute per-axis sensitivity for a device, play style and game.

Examples:
  aimtune calculate --game pubg-mobile --width 1080 --height 2400 --dpi 401 --refresh 120 --gyro --fingers 4 --skill advanced --aim right
  aimtune calculate --game "Free Fire" --mode "Clash Squad" --width 720 --height 1600 --dpi 270 --refresh 60 --fingers 2 --skill beginner --aim thumb --local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := calculationRequest(cmd)
		if err != nil {
			return err
		}
		var explain model.Axis
		if raw, _ := cmd.Flags().GetString("explain"); raw != "" {
			if explain, err = model.ParseAxis(raw); err != nil {
				return err
			}
		}

		var res model.CalculationResult
		if local, _ := cmd.Flags().GetBool("local"); local {
			svc := service.New()
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()
			if res, err = svc.Calculate(cmd.Context(), req); err != nil {
				return err
			}
		} else {
			resp, err := newAPIClient().post(cmd.Context(), "/v1/calculate", req)
			if err != nil {
				return err
			}
			if err := decodeJSON(resp, &res); err != nil {
				return err
			}
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), res)
		}
		return renderResult(printer(), cmd.OutOrStdout(), res, explain)
	},
}

func calculationRequest(cmd *cobra.Command) (model.CalculationRequest, error) {
	flags := cmd.Flags()
	game, _ := flags.GetString("game")
	if game == "" {
		return model.CalculationRequest{}, fmt.Errorf("--game is required")
	}
	mode, _ := flags.GetString("mode")
	width, _ := flags.GetInt("width")
	height, _ := flags.GetInt("height")
	dpi, _ := flags.GetFloat64("dpi")
	refresh, _ := flags.GetInt("refresh")
	gyro, _ := flags.GetBool("gyro")
	fingers, _ := flags.GetInt("fingers")
	claw, _ := flags.GetBool("claw")

	skillRaw, _ := flags.GetString("skill")
	skill, err := model.ParseSkillLevel(skillRaw)
	if err != nil {
		return model.CalculationRequest{}, err
	}
	aimRaw, _ := flags.GetString("aim")
	aim, err := model.ParseAimingFinger(aimRaw)
	if err != nil {
		return model.CalculationRequest{}, err
	}

	return model.CalculationRequest{
		GameID: game,
		Mode:   mode,
		Device: model.DeviceProfile{
			ResolutionWidth:  width,
			ResolutionHeight: height,
			DPI:              dpi,
			RefreshRateHz:    refresh,
			HasGyro:          gyro,
		},
		Style: model.PlayerStyle{
			FingerCount:  fingers,
			SkillLevel:   skill,
			AimingFinger: aim,
			ClawGrip:     claw,
		},
	}, nil
}

func init() {
	f := calculateCmd.Flags()
	f.String("game", "", "game id or name")
	f.String("mode", "", "game mode")
	f.Int("width", 1080, "screen width in pixels")
	f.Int("height", 2400, "screen height in pixels")
	f.Float64("dpi", 400, "screen density in dots per inch")
	f.Int("refresh", 60, "refresh rate in Hz")
	f.Bool("gyro", false, "device has a gyroscope")
	f.Int("fingers", 2, "fingers used, 1 to 5")
	f.String("skill", string(model.SkillIntermediate), "beginner, intermediate, advanced or pro")
	f.String("aim", string(model.AimRight), "aiming finger: left, right or thumb")
	f.Bool("claw", false, "claw grip")
	f.Bool("local", false, "compute in-process instead of calling the server")
	f.String("explain", "", "only list the explanation factors of this axis")
}

// --- feedback ---

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Rate one axis of a previous result",
	Long: `Rate one axis of a previous result so later results are calibrated.

Examples:
  aimtune feedback --result 6f1c... --axis scope4x --rating too-high
  aimtune feedback --result 6f1c... --rating -1 --note "a bit fast"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resultID, _ := cmd.Flags().GetString("result")
		rating, _ := cmd.Flags().GetString("rating")
		if resultID == "" || rating == "" {
			return fmt.Errorf("--result and --rating are required")
		}
		if _, err := types.ParseRating(rating); err != nil {
			return err
		}
		axis, _ := cmd.Flags().GetString("axis")
		note, _ := cmd.Flags().GetString("note")
		id, _ := cmd.Flags().GetString("id")

		in := types.FeedbackInput{ID: id, ResultID: resultID, Axis: axis, Rating: rating, Note: note}
		resp, err := newAPIClient().post(cmd.Context(), "/v1/feedback", in)
		if err != nil {
			return err
		}
		var out types.FeedbackOutcome
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), out)
		}
		renderFeedback(printer(), cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().String("result", "", "result id")
	feedbackCmd.Flags().String("axis", string(model.AxisGeneral), "axis to rate")
	feedbackCmd.Flags().String("rating", "", "too-high, too-low, just-right or -2..2")
	feedbackCmd.Flags().String("note", "", "free text")
	feedbackCmd.Flags().String("id", "", "idempotency key")
}

// --- games ---

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List supported games",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().get(cmd.Context(), "/v1/games")
		if err != nil {
			return err
		}
		var out struct {
			Games []model.GameProfile `json:"games"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), out.Games)
		}
		return renderGames(printer(), cmd.OutOrStdout(), out.Games)
	},
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history <game>",
	Short: "Show feedback recorded for a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().get(cmd.Context(), "/v1/history/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		var out types.History
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), out)
		}
		return renderHistory(printer(), cmd.OutOrStdout(), out)
	},
}

// --- results ---

var resultsCmd = &cobra.Command{
	Use:   "results [id]",
	Short: "List recent results, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		if len(args) == 1 {
			resp, err := client.get(cmd.Context(), "/v1/results/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			var res model.CalculationResult
			if err := decodeJSON(resp, &res); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSONOut(cmd.OutOrStdout(), res)
			}
			return renderResult(printer(), cmd.OutOrStdout(), res, "")
		}

		q := url.Values{}
		if game, _ := cmd.Flags().GetString("game"); game != "" {
			q.Set("game", game)
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		path := "/v1/results"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}
		var out types.ResultList
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), out)
		}
		return renderResults(printer(), cmd.OutOrStdout(), out)
	},
}

func init() {
	resultsCmd.Flags().String("game", "", "only results for this game")
	resultsCmd.Flags().Int("limit", 0, "page size, server default when 0")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show service statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().get(cmd.Context(), "/stats")
		if err != nil {
			return err
		}
		var out types.Stats
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if jsonOutput {
			return writeJSONOut(cmd.OutOrStdout(), out)
		}
		return renderStats(printer(), cmd.OutOrStdout(), out)
	},
}

// --- clear ---

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored result and feedback record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("clear deletes all history; pass --yes to confirm")
		}
		resp, err := newAPIClient().delete(cmd.Context(), "/v1/history")
		if err != nil {
			return err
		}
		var out map[string]string
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), printer().Sprintf("clear.done"))
		return nil
	},
}

func init() {
	clearCmd.Flags().Bool("yes", false, "confirm deletion")
}
