package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dorm2mcp/internal/protocol"
)

var resourceOrder = []string{
	protocol.ResourceURISchema,
	protocol.ResourceURIStudents,
	protocol.ResourceURIRooms,
	protocol.ResourceURIOccupancy,
	protocol.ResourceURIMaintenance,
}

type resourceHandler func(context.Context) (string, error)

type resourceDefinition struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MIMEType    string          `json:"mimeType"`
	handler     resourceHandler `json:"-"`
}

type resourcesReadParams struct {
	URI string `json:"uri"`
}

func (s *Server) buildResourceRegistry() map[string]resourceDefinition {
	return map[string]resourceDefinition{
		protocol.ResourceURISchema: {
			URI:         protocol.ResourceURISchema,
			Name:        "Dormitory schema",
			Description: "The dormitory database schema.",
			MIMEType:    "text/plain",
			handler: func(ctx context.Context) (string, error) {
				return s.store.Schema(ctx)
			},
		},
		protocol.ResourceURIStudents: {
			URI:         protocol.ResourceURIStudents,
			Name:        "Students",
			Description: "All students in the dormitory system.",
			MIMEType:    "text/plain",
			handler: func(ctx context.Context) (string, error) {
				students, err := s.store.ListStudents(ctx)
				if err != nil {
					return "", err
				}
				return renderStudentLines(students), nil
			},
		},
		protocol.ResourceURIRooms: {
			URI:         protocol.ResourceURIRooms,
			Name:        "Rooms",
			Description: "All rooms in the dormitory.",
			MIMEType:    "text/plain",
			handler: func(ctx context.Context) (string, error) {
				rooms, err := s.store.ListRooms(ctx)
				if err != nil {
					return "", err
				}
				return renderRoomLines(rooms), nil
			},
		},
		protocol.ResourceURIOccupancy: {
			URI:         protocol.ResourceURIOccupancy,
			Name:        "Occupancy",
			Description: "Current dormitory occupancy per room.",
			MIMEType:    "text/plain",
			handler: func(ctx context.Context) (string, error) {
				rows, err := s.store.OccupancySummary(ctx)
				if err != nil {
					return "", err
				}
				return renderOccupancyLines(rows), nil
			},
		},
		protocol.ResourceURIMaintenance: {
			URI:         protocol.ResourceURIMaintenance,
			Name:        "Maintenance",
			Description: "Maintenance requests, newest first.",
			MIMEType:    "text/plain",
			handler: func(ctx context.Context) (string, error) {
				rows, err := s.store.MaintenanceList(ctx)
				if err != nil {
					return "", err
				}
				return renderMaintenanceLines(rows), nil
			},
		},
	}
}

func (s *Server) handleResourcesList(w http.ResponseWriter, id interface{}) {
	resources := make([]resourceDefinition, 0, len(s.resources))
	for _, uri := range resourceOrder {
		if res, ok := s.resources[uri]; ok {
			resources = append(resources, res)
		}
	}
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"resources": resources,
	})
}

func (s *Server) handleResourcesRead(ctx context.Context, w http.ResponseWriter, rawParams json.RawMessage, id interface{}) {
	var params resourcesReadParams
	if len(rawParams) > 0 {
		if err := json.Unmarshal(rawParams, &params); err != nil {
			writeError(w, http.StatusBadRequest, id, rpcCodeInvalidParams, "invalid resources/read params")
			return
		}
	}
	params.URI = strings.TrimSpace(params.URI)
	if params.URI == "" {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidParams, "resources/read params.uri is required")
		return
	}

	res, ok := s.resources[params.URI]
	if !ok {
		writeError(w, http.StatusOK, id, rpcCodeResourceMissed, fmt.Sprintf("resource not found: %s", params.URI))
		return
	}

	text, err := res.handler(ctx)
	if err != nil {
		s.logf("resource %s: %v", res.URI, err)
		text = fmt.Sprintf("Error: %s", err)
	}
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      res.URI,
				"mimeType": res.MIMEType,
				"text":     text,
			},
		},
	})
}
