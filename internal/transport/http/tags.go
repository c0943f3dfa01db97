package http

import (
	"context"
	"log"
	"net/http"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
)

type TagNamer interface {
	SetDisplayName(ctx context.Context, tagID, name string) (app.TagName, error)
	ListNames(ctx context.Context) ([]app.TagName, error)
}

type tagNameRequest struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
}

type tagNameResponse struct {
	Status string `json:"status,omitempty"`
	TagID  string `json:"tag_id"`
	Name   string `json:"name"`
}

type tagListResponse struct {
	Tags []tagNameResponse `json:"tags"`
}

// HandleSetTagName renames a tag that has been sighted or named before.
func HandleSetTagName(svc TagNamer, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagNameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		tag, err := svc.SetDisplayName(r.Context(), req.TagID, req.Name)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, tagNameResponse{Status: "success", TagID: tag.TagID, Name: tag.Name})
	}
}

func HandleListTags(svc TagNamer, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.ListNames(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		resp := tagListResponse{Tags: make([]tagNameResponse, 0, len(names))}
		for _, n := range names {
			resp.Tags = append(resp.Tags, tagNameResponse{TagID: n.TagID, Name: n.Name})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
