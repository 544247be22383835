package handlers

import "net/http"

// Health reports that the server is up. The shape is part of the wire
// contract.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}
