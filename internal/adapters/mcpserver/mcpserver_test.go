package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/types"
)

// --- mocks ---

type mockEngine struct {
	lastCalc     model.CalculationRequest
	lastFeedback types.FeedbackInput
	calcErr      error
	feedbackErr  error
}

func (m *mockEngine) Calculate(_ context.Context, req model.CalculationRequest) (model.CalculationResult, error) {
	m.lastCalc = req
	if m.calcErr != nil {
		return model.CalculationResult{}, m.calcErr
	}
	return model.CalculationResult{ID: "r-1", GameID: "codm", Confidence: 0.6}, nil
}

func (m *mockEngine) SubmitFeedback(_ context.Context, in types.FeedbackInput) (types.FeedbackOutcome, error) {
	m.lastFeedback = in
	if m.feedbackErr != nil {
		return types.FeedbackOutcome{}, m.feedbackErr
	}
	return types.FeedbackOutcome{Feedback: model.FeedbackRecord{ID: "f-1", ResultID: in.ResultID}}, nil
}

func (m *mockEngine) Games() []model.GameProfile {
	return []model.GameProfile{{GameID: "codm", Name: "Call of Duty Mobile"}}
}

// --- helpers ---

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func calcArgs() map[string]interface{} {
	return map[string]interface{}{
		"game":    "codm",
		"mode":    "Multiplayer",
		"width":   1080,
		"height":  2400,
		"dpi":     440,
		"refresh": 120,
		"gyro":    true,
		"fingers": 4,
		"skill":   "Pro",
		"aim":     "right",
		"claw":    true,
	}
}

// --- tests ---

func TestMCPTool_Calculate(t *testing.T) {
	engine := &mockEngine{}
	handler := toolCalculate(engine)

	result, err := handler(context.Background(), makeCallToolRequest(ToolCalculate, calcArgs()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	var got model.CalculationResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.ID != "r-1" {
		t.Fatalf("expected result r-1, got %s", got.ID)
	}

	req := engine.lastCalc
	if req.GameID != "codm" || req.Mode != "Multiplayer" {
		t.Fatalf("unexpected game/mode: %s/%s", req.GameID, req.Mode)
	}
	if req.Device.ResolutionWidth != 1080 || req.Device.DPI != 440 || req.Device.RefreshRateHz != 120 || !req.Device.HasGyro {
		t.Fatalf("unexpected device: %+v", req.Device)
	}
	if req.Style.FingerCount != 4 || req.Style.SkillLevel != model.SkillPro || req.Style.AimingFinger != model.AimRight || !req.Style.ClawGrip {
		t.Fatalf("unexpected style: %+v", req.Style)
	}
}

func TestMCPTool_Calculate_MissingArgument(t *testing.T) {
	args := calcArgs()
	delete(args, "dpi")

	result, err := toolCalculate(&mockEngine{})(context.Background(), makeCallToolRequest(ToolCalculate, args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if !strings.Contains(resultText(t, result), "dpi") {
		t.Fatalf("expected dpi in message, got %s", resultText(t, result))
	}
}

func TestMCPTool_Calculate_RejectsNonIntegers(t *testing.T) {
	tests := []struct {
		field string
		value any
	}{
		{"fingers", 4.9},
		{"refresh", 143.99},
		{"width", 1080.5},
		{"height", 1e12},
		{"width", -1e12},
		{"refresh", math.NaN()},
		{"fingers", "four"},
	}
	for _, tt := range tests {
		engine := &mockEngine{}
		args := calcArgs()
		args[tt.field] = tt.value

		result, err := toolCalculate(engine)(context.Background(), makeCallToolRequest(ToolCalculate, args))
		if err != nil {
			t.Fatalf("%s=%v: unexpected error: %v", tt.field, tt.value, err)
		}
		if !result.IsError {
			t.Fatalf("%s=%v: expected tool error, engine saw %+v", tt.field, tt.value, engine.lastCalc)
		}
		if !strings.Contains(resultText(t, result), tt.field) {
			t.Fatalf("%s=%v: expected field name in message, got %s", tt.field, tt.value, resultText(t, result))
		}
		if engine.lastCalc.GameID != "" {
			t.Fatalf("%s=%v: engine should not be called", tt.field, tt.value)
		}
	}
}

func TestMCPTool_Calculate_AcceptsWholeFloats(t *testing.T) {
	engine := &mockEngine{}
	args := calcArgs()
	args["fingers"] = 3.0
	args["refresh"] = 144.0

	result, _ := toolCalculate(engine)(context.Background(), makeCallToolRequest(ToolCalculate, args))
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if engine.lastCalc.Style.FingerCount != 3 || engine.lastCalc.Device.RefreshRateHz != 144 {
		t.Fatalf("unexpected request: %+v", engine.lastCalc)
	}
}

func TestMCPTool_Calculate_BadSkill(t *testing.T) {
	args := calcArgs()
	args["skill"] = "godlike"

	result, _ := toolCalculate(&mockEngine{})(context.Background(), makeCallToolRequest(ToolCalculate, args))
	if !result.IsError {
		t.Fatal("expected tool error for unknown skill")
	}
}

func TestMCPTool_Calculate_EngineError(t *testing.T) {
	engine := &mockEngine{calcErr: model.ErrUnknownGame}

	result, err := toolCalculate(engine)(context.Background(), makeCallToolRequest(ToolCalculate, calcArgs()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if resultText(t, result) != model.ErrUnknownGame.Error() {
		t.Fatalf("unexpected message: %s", resultText(t, result))
	}
}

func TestMCPTool_Feedback(t *testing.T) {
	engine := &mockEngine{}
	handler := toolFeedback(engine)

	result, err := handler(context.Background(), makeCallToolRequest(ToolFeedback, map[string]interface{}{
		"result_id": "r-1",
		"axis":      "scope4x",
		"rating":    "too-high",
		"note":      "floaty",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if engine.lastFeedback.Rating != "too-high" || engine.lastFeedback.Axis != "scope4x" {
		t.Fatalf("unexpected feedback input: %+v", engine.lastFeedback)
	}
	if !strings.Contains(resultText(t, result), `"f-1"`) {
		t.Fatalf("expected feedback id in response, got %s", resultText(t, result))
	}
}

func TestMCPTool_Feedback_NumericRating(t *testing.T) {
	engine := &mockEngine{}

	result, _ := toolFeedback(engine)(context.Background(), makeCallToolRequest(ToolFeedback, map[string]interface{}{
		"result_id": "r-1",
		"rating":    -1,
	}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if engine.lastFeedback.Rating != "-1" {
		t.Fatalf("expected rating -1, got %q", engine.lastFeedback.Rating)
	}
}

func TestMCPTool_Feedback_FractionalRating(t *testing.T) {
	engine := &mockEngine{}

	result, _ := toolFeedback(engine)(context.Background(), makeCallToolRequest(ToolFeedback, map[string]interface{}{
		"result_id": "r-1",
		"rating":    1.5,
	}))
	if !result.IsError {
		t.Fatalf("expected tool error, engine saw %+v", engine.lastFeedback)
	}
	if !strings.Contains(resultText(t, result), "rating") {
		t.Fatalf("expected rating in message, got %s", resultText(t, result))
	}
}

func TestMCPTool_Feedback_Errors(t *testing.T) {
	missing, _ := toolFeedback(&mockEngine{})(context.Background(), makeCallToolRequest(ToolFeedback, map[string]interface{}{
		"rating": "too-low",
	}))
	if !missing.IsError {
		t.Fatal("expected error without result_id")
	}

	engine := &mockEngine{feedbackErr: errors.New("result not found: r-9")}
	failed, _ := toolFeedback(engine)(context.Background(), makeCallToolRequest(ToolFeedback, map[string]interface{}{
		"result_id": "r-9",
		"rating":    "too-low",
	}))
	if !failed.IsError {
		t.Fatal("expected error from engine")
	}
}

func TestMCPTool_ListGames(t *testing.T) {
	result, err := toolListGames(&mockEngine{})(context.Background(), makeCallToolRequest(ToolListGames, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var games []model.GameProfile
	if err := json.Unmarshal([]byte(resultText(t, result)), &games); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(games) != 1 || games[0].GameID != "codm" {
		t.Fatalf("unexpected games: %+v", games)
	}
}

func TestNewServer_ListsTools(t *testing.T) {
	s := NewServer(&mockEngine{}, "test")

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	for _, name := range []string{ToolCalculate, ToolFeedback, ToolListGames} {
		if !strings.Contains(string(b), `"`+name+`"`) {
			t.Fatalf("tool %s not listed in %s", name, b)
		}
	}
}
