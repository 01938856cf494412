package server

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"griddle/internal/config"
	"griddle/internal/db"
	"griddle/internal/rooms"
)

// Server bundles the room coordinator, the optional durable room store, and
// the public base URL used for share links.
type Server struct {
	Coordinator *rooms.Coordinator
	DB          *db.DB // nil if no database configured
	BaseURL     string
}

// Run wires the full relay server and serves until the listener fails.
func Run() error {
	appCfg := config.Load()

	store := rooms.NewStore()

	var database *db.DB
	var records rooms.RecordStore
	if appCfg.DatabaseURL != "" {
		d, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, running without durable rooms")
		} else {
			if err := d.Migrate(); err != nil {
				log.Warn().Err(err).Msg("migration failed")
			}
			database = d
			records = d
			go pruneLoop(d)
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, running without durable rooms")
	}

	srv := &Server{
		Coordinator: rooms.NewCoordinator(store, records),
		DB:          database,
		BaseURL:     baseURL(appCfg.Port),
	}

	addr := "0.0.0.0:" + appCfg.Port
	log.Info().Str("addr", addr).Msg("relay listening")
	return http.ListenAndServe(addr, srv.Router())
}

// Router builds the HTTP surface. Split out so tests can mount it on an
// httptest server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Route("/rooms/{key}", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/", s.handleRoomLookup)
		r.Get("/qr", s.handleRoomQR)
	})
	return r
}

func baseURL(port string) string {
	if u := os.Getenv("PUBLIC_URL"); u != "" {
		return u
	}
	return "http://localhost:" + port
}

func pruneLoop(d *db.DB) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		n, err := d.PruneExpired()
		if err != nil {
			log.Warn().Err(err).Msg("pruning expired rooms")
			continue
		}
		if n > 0 {
			log.Debug().Int64("pruned", n).Msg("expired room records removed")
		}
	}
}
