package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// infoResponse is the JSON form of driving.DocumentInfo.
type infoResponse struct {
	ID       string          `json:"id"`
	Timeline domain.Timeline `json:"timeline"`
	Live     bool            `json:"live"`
	Sessions int             `json:"sessions"`
	Shapes   int             `json:"shapes"`
}

func toResponse(info *driving.DocumentInfo) infoResponse {
	return infoResponse{
		ID:       info.PublicID,
		Timeline: info.Timeline,
		Live:     info.Live,
		Sessions: info.Sessions,
		Shapes:   info.Shapes,
	}
}

func (s *Server) serveList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.exports.Live(r.Context())
	if err != nil {
		exportError(w, err)
		return
	}

	out := make([]infoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, toResponse(info))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) serveInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.exports.Info(r.Context(), r.PathValue("id"))
	if err != nil {
		exportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(info))
}

func (s *Server) serveLottie(w http.ResponseWriter, r *http.Request) {
	data, err := s.exports.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		exportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) serveSticker(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := s.exports.Sticker(r.Context(), id)
	if err != nil {
		exportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-tgsticker")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.tgs"`)
	_, _ = w.Write(data)
}

func exportError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	logger.Error("export: %v", err)
	http.Error(w, "export failed", http.StatusInternalServerError)
}
