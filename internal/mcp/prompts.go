package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dorm2mcp/internal/protocol"
)

const helpPromptText = `You are a helpful assistant for a dormitory management system. You can:

1. Answer questions about students, rooms, and occupancy
2. Check room availability
3. Find information about specific students
4. View maintenance requests

Use the available tools and resources to provide accurate information.`

const helpPromptDescription = "How to interact with the dormitory management system."

type promptsGetParams struct {
	Name string `json:"name"`
}

func (s *Server) handlePromptsList(w http.ResponseWriter, id interface{}) {
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"prompts": []map[string]interface{}{
			{
				"name":        protocol.PromptNameHelp,
				"description": helpPromptDescription,
			},
		},
	})
}

func (s *Server) handlePromptsGet(w http.ResponseWriter, rawParams json.RawMessage, id interface{}) {
	var params promptsGetParams
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, &params); err != nil {
			writeError(w, http.StatusBadRequest, id, rpcCodeInvalidParams, "invalid prompts/get params")
			return
		}
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name != protocol.PromptNameHelp {
		writeError(w, http.StatusOK, id, rpcCodeInvalidParams, fmt.Sprintf("unknown prompt: %s", params.Name))
		return
	}

	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"description": helpPromptDescription,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": map[string]interface{}{
					"type": "text",
					"text": helpPromptText,
				},
			},
		},
	})
}
