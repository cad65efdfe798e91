package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"smartstock/internal/models"
	"smartstock/internal/repository"
)

const (
	modelName = "gemini-2.0-flash-001"

	// maxToolRounds bounds the call/response loop with the model.
	maxToolRounds = 5
)

var ErrNoAnswer = errors.New("model returned no candidates")

// Inventory is the read side the assistant needs.
type Inventory interface {
	Snapshot() repository.Snapshot
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_inventory",
				Description: "List raw materials and products with unit, stock, minimum threshold and prices. Use this to find ANY item details.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {Type: genai.TypeString, Description: "Optional case-insensitive name filter"},
					},
				},
			},
			{
				Name:        "get_low_stock",
				Description: "List every raw material and product at or below its minimum threshold.",
			},
			{
				Name:        "get_sales_report",
				Description: "Get sales, purchases, profit and top sellers for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
		},
	},
}

// RunAgent answers a free-text question about the stock, letting the model call
// read-only tools against the current inventory.
func RunAgent(ctx context.Context, userMessage, apiKey string, inv Inventory, now time.Time) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.Tools = tools

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the SmartStock inventory assistant for a small manufacturer.

	RULES:
	1. STOCK: For any question about an item's stock, unit, price or cost call 'check_inventory'.
	   Do NOT ask the user for IDs.
	2. ALERTS: For "what is running low" style questions call 'get_low_stock'.
	3. REPORTS: For sales, purchases, revenue or profit call 'get_sales_report'.
	   "this week" means the last 7 days, "this month" starts on the 1st.
	4. Amounts are plain decimals with no currency.

	USER: %s`, now.Format(models.DateLayout), userMessage)

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls, err := functionCalls(resp)
		if err != nil {
			return "", err
		}
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		// Answer every call of this turn against one snapshot.
		snap := inv.Snapshot()
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.FunctionResponse{
				Name:     call.Name,
				Response: executeTool(snap, call, now),
			})
		}
		resp, err = session.SendMessage(ctx, parts...)
		if err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) ([]genai.FunctionCall, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoAnswer
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls, nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "I completed the action."
	}
	return sb.String()
}
