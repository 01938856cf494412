package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// roomView is the JSON shape of a room lookup. Live rooms take precedence;
// a room that only exists as a durable record (relay restarted) still
// resolves until its TTL runs out.
type roomView struct {
	RoomKey     string `json:"roomKey"`
	Status      string `json:"status"`
	CreatorName string `json:"creatorName,omitempty"`
	JoinerName  string `json:"joinerName,omitempty"`
}

func (s *Server) handleRoomLookup(w http.ResponseWriter, r *http.Request) {
	key := normalizeKey(chi.URLParam(r, "key"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if room := s.Coordinator.Store().Get(key); room != nil {
		view := roomView{RoomKey: room.Key, Status: string(room.Status())}
		if ps := room.Participants(); len(ps) > 0 {
			view.CreatorName = ps[0].DisplayName
			if len(ps) > 1 {
				view.JoinerName = ps[1].DisplayName
			}
		}
		_ = json.NewEncoder(w).Encode(view)
		return
	}

	if s.DB != nil {
		rec, err := s.DB.GetRecord(key)
		if err != nil {
			log.Warn().Err(err).Str("room", key).Msg("room record lookup")
		} else if rec != nil {
			view := roomView{RoomKey: rec.RoomKey, Status: rec.Status, CreatorName: rec.CreatorName}
			if rec.JoinerName != nil {
				view.JoinerName = *rec.JoinerName
			}
			_ = json.NewEncoder(w).Encode(view)
			return
		}
	}

	http.Error(w, `{"error":"room not found"}`, http.StatusNotFound)
}

// handleRoomQR renders the shareable join link as a PNG QR code.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	key := normalizeKey(chi.URLParam(r, "key"))
	if s.Coordinator.Store().Get(key) == nil {
		http.Error(w, `{"error":"room not found"}`, http.StatusNotFound)
		return
	}

	link := s.BaseURL + "/?room=" + key
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Error().Err(err).Str("room", key).Msg("encoding QR")
		http.Error(w, `{"error":"qr encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
