package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/moltblox/tournament-engine/brackets"
	"github.com/moltblox/tournament-engine/services"
)

type MatchHandler struct {
	matches *services.MatchService
}

func NewMatchHandler(matches *services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// GetMatchHandler handles GET /tournaments/{tournamentID}/matches/{matchUID}.
func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUID, err := matchUIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matches.GetMatch(r.Context(), tournamentID, matchUID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRoundHandler handles GET /tournaments/{tournamentID}/matches.
// An optional round query parameter selects a round by play order;
// without it the current round is returned.
func (h *MatchHandler) ListRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playOrder := 0
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		playOrder, err = strconv.Atoi(roundStr)
		if err != nil || playOrder <= 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
	}

	matches, err := h.matches.ListRound(r.Context(), tournamentID, playOrder)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler handles PATCH /tournaments/{tournamentID}/matches/{matchUID}/status.
func (h *MatchHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUID, err := matchUIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status brackets.MatchStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matches.UpdateMatchStatus(r.Context(), tournamentID, matchUID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
