package respond

import (
	"encoding/json"
	"net/http"
)

/*
Every mutation endpoint answers {"success": true, ...} or
{"error": message} with a matching status code.
*/

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{
		"success": true,
	}

	for key, value := range extra {
		payload[key] = value
	}

	JSON(w, http.StatusOK, payload)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{
		"error": message,
	})
}
