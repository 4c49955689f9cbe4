// Package mcpserver exposes the sensitivity engine as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
	"github.com/okian/aimtune/pkg/metrics"
)

// Tool names.
const (
	ToolCalculate = "calculate_sensitivity"
	ToolFeedback  = "submit_feedback"
	ToolListGames = "list_games"
)

// Engine is what the tools call into.
type Engine interface {
	Calculate(ctx context.Context, req model.CalculationRequest) (model.CalculationResult, error)
	SubmitFeedback(ctx context.Context, in types.FeedbackInput) (types.FeedbackOutcome, error)
	Games() []model.GameProfile
}

// NewServer creates an MCP server with every aimtune tool registered.
func NewServer(engine Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"aimtune",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("aimtune recommends per-axis touchscreen sensitivity for mobile FPS games and learns from feedback."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool(ToolCalculate,
			mcp.WithDescription("Compute per-axis sensitivity for a device, player style and game."),
			mcp.WithString("game", mcp.Description("Game id or name, e.g. pubg-mobile or Free Fire"), mcp.Required()),
			mcp.WithString("mode", mcp.Description("Optional game mode, e.g. Battle Royale")),
			mcp.WithNumber("width", mcp.Description("Screen width in pixels"), mcp.Required()),
			mcp.WithNumber("height", mcp.Description("Screen height in pixels"), mcp.Required()),
			mcp.WithNumber("dpi", mcp.Description("Screen density in dots per inch"), mcp.Required()),
			mcp.WithNumber("refresh", mcp.Description("Refresh rate in Hz"), mcp.Required()),
			mcp.WithBoolean("gyro", mcp.Description("Device has a gyroscope")),
			mcp.WithNumber("fingers", mcp.Description("Fingers used, 1 to 5"), mcp.Required()),
			mcp.WithString("skill", mcp.Description("beginner, intermediate, advanced or pro"), mcp.Required()),
			mcp.WithString("aim", mcp.Description("Aiming finger: left, right or thumb"), mcp.Required()),
			mcp.WithBoolean("claw", mcp.Description("Claw grip")),
		),
		toolCalculate(engine),
	)

	s.AddTool(
		mcp.NewTool(ToolFeedback,
			mcp.WithDescription("Rate one axis of a previous result so later results are calibrated."),
			mcp.WithString("result_id", mcp.Description("ID of the rated result"), mcp.Required()),
			mcp.WithString("axis", mcp.Description("Axis tag, general when empty")),
			mcp.WithString("rating", mcp.Description("too-high, too-low, just-right or -2..2"), mcp.Required()),
			mcp.WithString("id", mcp.Description("Optional idempotency key")),
			mcp.WithString("note", mcp.Description("Optional free text")),
		),
		toolFeedback(engine),
	)

	s.AddTool(
		mcp.NewTool(ToolListGames,
			mcp.WithDescription("List supported games with their modes, base values and slider ranges."),
		),
		toolListGames(engine),
	)

	return s
}

// ServeStdio serves s on in and out until ctx is done.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	err := server.NewStdioServer(s).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func toolCalculate(engine Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		game, err := req.RequireString("game")
		if err != nil {
			return toolError(ToolCalculate, "game is required"), nil
		}
		width, err := intArg(req, "width")
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}
		height, err := intArg(req, "height")
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}
		dpi, err := req.RequireFloat("dpi")
		if err != nil {
			return toolError(ToolCalculate, "dpi is required"), nil
		}
		refresh, err := intArg(req, "refresh")
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}
		fingers, err := intArg(req, "fingers")
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}

		skill, err := model.ParseSkillLevel(req.GetString("skill", ""))
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}
		aim, err := model.ParseAimingFinger(req.GetString("aim", ""))
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}

		calc := model.CalculationRequest{
			GameID: game,
			Mode:   req.GetString("mode", ""),
			Device: model.DeviceProfile{
				ResolutionWidth:  width,
				ResolutionHeight: height,
				DPI:              dpi,
				RefreshRateHz:    refresh,
				HasGyro:          req.GetBool("gyro", false),
			},
			Style: model.PlayerStyle{
				FingerCount:  fingers,
				SkillLevel:   skill,
				AimingFinger: aim,
				ClawGrip:     req.GetBool("claw", false),
			},
		}

		result, err := engine.Calculate(ctx, calc)
		if err != nil {
			return toolError(ToolCalculate, err.Error()), nil
		}
		return toolJSON(ToolCalculate, result)
	}
}

func toolFeedback(engine Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resultID, err := req.RequireString("result_id")
		if err != nil {
			return toolError(ToolFeedback, "result_id is required"), nil
		}
		rating, err := ratingArg(req)
		if err != nil {
			return toolError(ToolFeedback, err.Error()), nil
		}

		out, err := engine.SubmitFeedback(ctx, types.FeedbackInput{
			ID:       req.GetString("id", ""),
			ResultID: resultID,
			Axis:     req.GetString("axis", ""),
			Rating:   rating,
			Note:     req.GetString("note", ""),
		})
		if err != nil {
			return toolError(ToolFeedback, err.Error()), nil
		}
		return toolJSON(ToolFeedback, out)
	}
}

// ratingArg accepts the rating as a label or as a whole number.
func ratingArg(req mcp.CallToolRequest) (string, error) {
	if s, err := req.RequireString("rating"); err == nil {
		return s, nil
	}
	n, err := intArg(req, "rating")
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

// intArg reads a required integer argument. JSON numbers arrive as floats;
// fractions, NaN and values beyond int32 are rejected rather than truncated.
func intArg(req mcp.CallToolRequest, name string) (int, error) {
	if _, ok := req.GetArguments()[name]; !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	x, err := req.RequireFloat(name)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	if x != math.Trunc(x) || x < math.MinInt32 || x > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a whole number, got %v", name, x)
	}
	return int(x), nil
}

func toolListGames(engine Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(ToolListGames, engine.Games())
	}
}

func toolJSON(tool string, v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(tool, fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	metrics.RecordMCPToolCall(tool, "ok")
	return toolText(string(b)), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func toolError(tool, msg string) *mcp.CallToolResult {
	metrics.RecordMCPToolCall(tool, "error")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
