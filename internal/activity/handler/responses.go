package handler

import (
	"time"

	"datamover/internal/activity"
)

// ListResponse is the HTTP response for GET /activity.
type ListResponse struct {
	Logs []LogResponse `json:"logs"`
}

// GroupedListResponse is the HTTP response for GET /activity?grouped=true.
type GroupedListResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// LogResponse is one activity record as served over HTTP.
type LogResponse struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	ActionType        string         `json:"action_type"`
	ActionDescription string         `json:"action_description"`
	ResourceType      string         `json:"resource_type"`
	ResourceID        string         `json:"resource_id,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// GroupResponse is a collapsed burst: one main record plus its sub-records.
type GroupResponse struct {
	Main LogResponse   `json:"main"`
	Subs []LogResponse `json:"subs"`
}

func toLogResponse(log activity.Log) LogResponse {
	return LogResponse{
		ID:                log.ID.String(),
		UserID:            log.UserID,
		ActionType:        log.ActionType,
		ActionDescription: log.ActionDescription,
		ResourceType:      log.ResourceType,
		ResourceID:        log.ResourceID,
		Metadata:          log.Metadata,
		CreatedAt:         log.CreatedAt,
	}
}

func toLogResponses(logs []activity.Log) []LogResponse {
	out := make([]LogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, toLogResponse(log))
	}
	return out
}

func toGroupResponses(groups []activity.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp := GroupResponse{
			Main: toLogResponse(g.Main),
			Subs: make([]LogResponse, 0, len(g.Subs)),
		}
		for _, sub := range g.Subs {
			resp.Subs = append(resp.Subs, toLogResponse(sub))
		}
		out = append(out, resp)
	}
	return out
}
