package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/locus-venue/pkg/logging"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Handler serves the server-side booking email endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SendBookingEmail handles POST /api/send-booking-email.
func (h *Handler) SendBookingEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
		return
	}

	var form Form
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&form); err != nil {
		h.logger.Warn("booking: failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	res, err := h.service.Submit(r.Context(), form)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: verr.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to send email"})
		return
	}
	if !res.OK() {
		h.logger.Error("booking: error sending email", "kind", res.Kind.String(), "status", res.Status, "error", res.Err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to send email"})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Email sent successfully"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
