package handlers

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

// handleEntryQR serves a QR code PNG pointing guests at the poll's entry URL.
// Organizers print it or put it on a screen at the party.
func (h *Handlers) handleEntryQR(w http.ResponseWriter, r *http.Request) {
	if h.BaseURL == "" {
		respondError(w, BadRequest("base URL not configured"))
		return
	}

	entryURL := strings.TrimSuffix(h.BaseURL, "/") + "/"
	png, err := qrcode.Encode(entryURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
