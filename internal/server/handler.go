package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"reelgrab/pkg/download"
	"reelgrab/pkg/errors"
	"reelgrab/pkg/extractor"
)

const exhaustedMessage = "Could not find video URL in the Instagram post after multiple attempts. " +
	"This could be due to Instagram blocking the request, the post being private, " +
	"or Instagram changing their page structure."

var exhaustedSuggestions = []string{
	"Try with a different Instagram reel",
	"Make sure the post is public",
	"Wait a few minutes and try again",
	"Check if the URL is correct",
	"Instagram may be blocking automated requests",
	"Try using a different network or VPN",
}

type downloadRequest struct {
	URL string `json:"url"`
}

type downloadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	DownloadURL   string `json:"downloadUrl"`
	CloudinaryURL string `json:"cloudinaryUrl,omitempty"`
	CloudinaryID  string `json:"cloudinaryId,omitempty"`
	FilePath      string `json:"filePath,omitempty"`
	UploadError   string `json:"uploadError,omitempty"`
}

type errorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     string   `json:"details,omitempty"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.URL == "" || !strings.Contains(req.URL, "instagram.com") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Please provide a valid Instagram URL"})
		return
	}

	s.logger.InfoWithFields("download requested", map[string]interface{}{
		"url": req.URL,
	})

	videoURL, err := s.resolver.Resolve(r.Context(), req.URL)
	if err != nil {
		if stderrors.Is(err, extractor.ErrExhausted) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:       exhaustedMessage,
				Suggestions: exhaustedSuggestions,
			})
			return
		}
		s.logger.WithError(err).Error("extraction failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   errors.UserMessage(err),
			Details: err.Error(),
		})
		return
	}

	filename := download.Filename()
	outcome, err := s.fetcher.Fetch(r.Context(), videoURL, filename)
	if err != nil {
		s.logger.WithError(err).Error("media fetch failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   errors.UserMessage(err),
			Details: err.Error(),
		})
		return
	}

	resp := downloadResponse{
		Success:  true,
		Filename: filename,
	}
	if outcome.Uploaded() {
		resp.Message = "Video downloaded and uploaded to cloud successfully"
		resp.DownloadURL = outcome.SecureURL
		resp.CloudinaryURL = outcome.SecureURL
		resp.CloudinaryID = outcome.PublicID
	} else {
		resp.Message = "Video downloaded locally (cloud upload failed)"
		resp.DownloadURL = "/downloads/" + filename
		resp.FilePath = outcome.LocalPath
		resp.UploadError = outcome.UploadError
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
