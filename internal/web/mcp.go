package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"kcal-cli/internal/nutrition"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
)

const toolCalculateCalories = "calculate_calories"

type calculateCaloriesParams struct {
	Food []string `json:"food" description:"Food names, one per product"`
	Gram []int    `json:"gram" description:"Grams per product, positionally matched with food"`
}

// handleToolCall serves MCP tool calls over plain HTTP so agents can use
// the calculator without the query-string API.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &nutrition.BadRequestError{Message: fmt.Sprintf("invalid JSON: %v", err), Err: err})
		return
	}

	switch req.Name {
	case toolCalculateCalories:
		var params calculateCaloriesParams
		b, err := json.Marshal(req.Arguments)
		if err == nil {
			err = json.Unmarshal(b, &params)
		}
		if err != nil {
			s.writeError(w, r, &nutrition.BadRequestError{Message: fmt.Sprintf("invalid parameters: %v", err), Err: err})
			return
		}
		grams := make([]string, len(params.Gram))
		for i, g := range params.Gram {
			grams[i] = strconv.Itoa(g)
		}
		calc, err := nutrition.NewRequest(len(params.Food), params.Food, grams)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		lines, err := s.svc.Calculate(r.Context(), calc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, &protocol.CallToolResult{
			Content: []protocol.Content{
				protocol.TextContent{
					Type: "text",
					Text: strings.Join(lines, "\n"),
				},
			},
		})
	default:
		s.writeError(w, r, &nutrition.NotFoundError{Message: fmt.Sprintf("unknown tool: %s", req.Name)})
	}
}
