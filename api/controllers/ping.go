package controllers

import (
	"net/http"

	"github.com/martinezjavi/ridepay-backend/api/middleware"
	"github.com/martinezjavi/ridepay-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if rider := middleware.RiderIDFromContext(r.Context()); rider != "" {
			payload["rider_id"] = rider
		}
		responses.WriteSuccess(w, payload)
	}
}
