package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kdblock/panel/internal/services"
	pkghttp "github.com/kdblock/panel/pkg/http"
)

// ContactHandler accepts public contact-form submissions
type ContactHandler struct {
	service services.ContactService
}

func NewContactHandler(service services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var msg services.ContactMessage

	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(msg); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Forward(r.Context(), &msg); err != nil {
		pkghttp.WriteInternalError(w, "Failed to send message. Please try again later.")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
