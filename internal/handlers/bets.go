package handlers

import (
	"net/http"

	"tunibet/models"
)

// LastBetsHandler - GET /bets/last-bets?car_id=, последние 5 ставок
func (h *Handler) LastBetsHandler(w http.ResponseWriter, r *http.Request) {
	carID, err := queryID(r, "car_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bets, err := h.Bets.RecentBets(r.Context(), carID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if bets == nil {
		bets = []models.Bet{}
	}
	writeJSON(w, http.StatusOK, bets)
}

// PlaceBetHandler - POST /bets/place-bet
func (h *Handler) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceBetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	bet, err := h.Bets.PlaceBet(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bet)
}

// AcceptBetHandler - POST /bets/accept-bet; автомобиль становится проданным
func (h *Handler) AcceptBetHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AcceptBetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	n, err := h.Bets.AcceptBet(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Bet accepted successfully",
		"notification": n,
	})
}

// NotificationsHandler - GET /notifications?user_id=
func (h *Handler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "user_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.Bets.Notifications(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []models.NotificationFeedItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
