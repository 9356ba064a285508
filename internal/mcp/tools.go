package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"dorm2mcp/internal/forecast"
	"dorm2mcp/internal/model"
	"dorm2mcp/internal/protocol"
)

const defaultForecastMonths = 3

// forbiddenSQLKeywords is a substring blocklist, not a SQL parser: a
// SELECT whose data happens to contain one of these words is rejected
// too.
var forbiddenSQLKeywords = []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE"}

var toolOrder = []string{
	protocol.ToolNameQueryDatabase,
	protocol.ToolNameFindStudent,
	protocol.ToolNameRoomOccupants,
	protocol.ToolNameCheckAvailability,
	protocol.ToolNamePredictOccupancy,
	protocol.ToolNameUpdateRoomCapacity,
}

type toolHandler func(context.Context, map[string]interface{}) (toolCallResult, *toolExecutionError)

type toolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	handler     toolHandler            `json:"-"`
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content           []toolContentItem `json:"content"`
	StructuredContent interface{}       `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolExecutionError struct {
	Code    string
	Message string
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		protocol.ToolNameQueryDatabase: {
			Name:        protocol.ToolNameQueryDatabase,
			Description: "Execute SQL queries on the dormitory database. Only SELECT statements are allowed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sql_query": map[string]interface{}{"type": "string", "description": "SELECT statement to run."},
				},
				"required": []string{"sql_query"},
			},
			handler: s.handleQueryDatabaseTool,
		},
		protocol.ToolNameFindStudent: {
			Name:        protocol.ToolNameFindStudent,
			Description: "Find a student by name or ID (case-sensitive substring match).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"search_term": map[string]interface{}{"type": "string", "description": "Part of a student ID or name."},
				},
				"required": []string{"search_term"},
			},
			handler: s.handleFindStudentTool,
		},
		protocol.ToolNameRoomOccupants: {
			Name:        protocol.ToolNameRoomOccupants,
			Description: "List all current occupants of a specific room.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"floor":       map[string]interface{}{"type": "integer"},
					"room_number": map[string]interface{}{"type": "string"},
				},
				"required": []string{"floor", "room_number"},
			},
			handler: s.handleRoomOccupantsTool,
		},
		protocol.ToolNameCheckAvailability: {
			Name:        protocol.ToolNameCheckAvailability,
			Description: "Check room availability in the dormitory, grouped by floor.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			handler: s.handleCheckAvailabilityTool,
		},
		protocol.ToolNamePredictOccupancy: {
			Name:        protocol.ToolNamePredictOccupancy,
			Description: "Project monthly check-in counts forward with a linear trend.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"months_ahead": map[string]interface{}{"type": "integer", "minimum": 1, "description": "How many future months to project. Defaults to 3."},
				},
			},
			handler: s.handlePredictOccupancyTool,
		},
		protocol.ToolNameUpdateRoomCapacity: {
			Name:        protocol.ToolNameUpdateRoomCapacity,
			Description: "Update the capacity of a room.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"room_id":      map[string]interface{}{"type": "integer"},
					"new_capacity": map[string]interface{}{"type": "integer", "minimum": 1},
				},
				"required": []string{"room_id", "new_capacity"},
			},
			handler: s.handleUpdateRoomCapacityTool,
		},
	}
}

func (s *Server) handleToolsList(w http.ResponseWriter, id interface{}) {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"tools": tools,
	})
}

func (s *Server) handleToolsCall(ctx context.Context, w http.ResponseWriter, rawParams json.RawMessage, id interface{}) {
	result, statusCode, rpcErr := s.processToolsCall(ctx, rawParams)
	if rpcErr != nil {
		writeResponse(w, statusCode, rpcResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   rpcErr,
		})
		return
	}
	writeResult(w, statusCode, id, result)
}

func (s *Server) processToolsCall(ctx context.Context, rawParams json.RawMessage) (toolCallResult, int, *rpcError) {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		return toolCallResult{}, http.StatusBadRequest, &rpcError{
			Code:    rpcCodeInvalidRequest,
			Message: err.Error(),
			Data: &rpcErrorData{
				Code:      "INVALID_FIELD",
				Retryable: false,
			},
		}
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return newToolErrorResult(toolExecutionError{
			Code:    "METHOD_NOT_FOUND",
			Message: fmt.Sprintf("unknown tool: %s", params.Name),
		}), http.StatusOK, nil
	}

	result, toolErr := tool.handler(ctx, params.Arguments)
	if toolErr != nil {
		return newToolErrorResult(*toolErr), http.StatusOK, nil
	}
	return result, http.StatusOK, nil
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 {
		return toolsCallParams{}, errors.New("params is required")
	}

	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, errors.New("invalid tools/call params")
	}

	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return toolsCallParams{}, errors.New("tools/call params.name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func newToolErrorResult(toolErr toolExecutionError) toolCallResult {
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{
			{Type: "text", Text: fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)},
		},
		StructuredContent: map[string]interface{}{
			"error": map[string]interface{}{
				"code":    toolErr.Code,
				"message": toolErr.Message,
			},
		},
	}
}

func textResult(text string) toolCallResult {
	return toolCallResult{
		Content: []toolContentItem{{Type: "text", Text: text}},
	}
}

// inlineErrorResult reports a domain failure as text in the result
// body. The dispatcher keeps serving; nothing here faults the RPC.
func inlineErrorResult(text string) toolCallResult {
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{{Type: "text", Text: text}},
	}
}

func (s *Server) handleQueryDatabaseTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{"sql_query": {}}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	sqlQuery, ok, err := parseRequiredString(args, "sql_query")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "sql_query is required"}
	}

	upper := strings.ToUpper(sqlQuery)
	for _, keyword := range forbiddenSQLKeywords {
		if strings.Contains(upper, keyword) {
			return inlineErrorResult("Error: Query contains forbidden keywords. Only SELECT queries are allowed."), nil
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(upper), "SELECT") {
		return inlineErrorResult("Error: Only SELECT queries are allowed for security reasons."), nil
	}

	result, err := s.store.RunReadOnlyQuery(ctx, sqlQuery)
	if err != nil {
		return inlineErrorResult(fmt.Sprintf("Error executing query: %s", err)), nil
	}
	return textResult(renderQueryTable(result)), nil
}

func (s *Server) handleFindStudentTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{"search_term": {}}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	searchTerm, ok, err := parseRequiredString(args, "search_term")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "search_term is required"}
	}

	matches, err := s.store.FindStudent(ctx, searchTerm)
	if err != nil {
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}
	return textResult(renderStudentMatches(searchTerm, matches)), nil
}

func (s *Server) handleRoomOccupantsTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{"floor": {}, "room_number": {}}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	rawFloor, ok := args["floor"]
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "floor is required"}
	}
	floor, err := parseInteger(rawFloor, "floor")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	roomNumber, ok, err := parseRequiredString(args, "room_number")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "room_number is required"}
	}

	occupants, err := s.store.RoomOccupants(ctx, floor, roomNumber)
	if err != nil {
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}
	return textResult(renderRoomOccupants(floor, roomNumber, occupants)), nil
}

func (s *Server) handleCheckAvailabilityTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}

	rooms, err := s.store.Availability(ctx)
	if err != nil {
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}
	return textResult(renderAvailability(rooms)), nil
}

func (s *Server) handlePredictOccupancyTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{"months_ahead": {}}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	monthsAhead := defaultForecastMonths
	if raw, ok := args["months_ahead"]; ok {
		parsed, err := parseInteger(raw, "months_ahead")
		if err != nil {
			return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
		}
		monthsAhead = parsed
	}
	if monthsAhead < 1 {
		return inlineErrorResult("Error: months_ahead must be at least 1."), nil
	}

	buckets, err := s.store.MonthlyCheckIns(ctx)
	if err != nil {
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}
	counts := make([]int, len(buckets))
	for i, bucket := range buckets {
		counts[i] = bucket.Count
	}

	projections, err := forecast.Project(counts, monthsAhead)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientData) {
			return inlineErrorResult("Error: Not enough historical data to predict occupancy."), nil
		}
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}

	result := textResult(renderForecast(monthsAhead, projections))
	result.StructuredContent = map[string]interface{}{
		"months_ahead": monthsAhead,
		"projections":  projections,
	}
	return result, nil
}

func (s *Server) handleUpdateRoomCapacityTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, map[string]struct{}{"room_id": {}, "new_capacity": {}}); err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	rawRoomID, ok := args["room_id"]
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "room_id is required"}
	}
	roomID, err := parseInteger(rawRoomID, "room_id")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	rawCapacity, ok := args["new_capacity"]
	if !ok {
		return toolCallResult{}, &toolExecutionError{Code: "MISSING_FIELD", Message: "new_capacity is required"}
	}
	newCapacity, err := parseInteger(rawCapacity, "new_capacity")
	if err != nil {
		return toolCallResult{}, &toolExecutionError{Code: "INVALID_FIELD", Message: err.Error()}
	}
	if newCapacity < 1 {
		return inlineErrorResult("Error: Capacity must be at least 1."), nil
	}

	if err := s.store.UpdateRoomCapacity(ctx, int64(roomID), newCapacity); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return inlineErrorResult(fmt.Sprintf("No room with ID %d found.", roomID)), nil
		}
		return inlineErrorResult(fmt.Sprintf("Error: %s", err)), nil
	}

	result := textResult(fmt.Sprintf("Room %d capacity updated to %d.", roomID, newCapacity))
	result.StructuredContent = map[string]interface{}{
		"room_id":  roomID,
		"capacity": newCapacity,
	}
	return result, nil
}

func assertNoUnknownArguments(args map[string]interface{}, allowed map[string]struct{}) error {
	for key := range args {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown argument: %s", key)
		}
	}
	return nil
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}

func parseInteger(value interface{}, field string) (int, error) {
	switch v := value.(type) {
	case float64:
		if math.Trunc(v) != v {
			return 0, fmt.Errorf("%s must be an integer", field)
		}
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", field)
	}
}
