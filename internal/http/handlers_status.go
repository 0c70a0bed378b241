package httpx

import "net/http"

// statusHandler reports liveness. Whitelisted, so it must stay dependency-free.
func statusHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"healthy": true})
}
