package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/config"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/http/handler"
	mw "github.com/Jakeagle/TrinityCapital-sub002/internal/http/middleware"
)

// Deps is everything the HTTP surface needs; wiring happens in main, not
// through globals.
type Deps struct {
	Jobs     handler.JobStore
	Core     handler.Scheduler
	Accounts handler.Accounts
	Timers   handler.Timers
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	schedH := &handler.SchedulerHandler{Core: deps.Core, Jobs: deps.Jobs, Accounts: deps.Accounts}
	r.Route("/scheduler", func(r chi.Router) {
		r.Get("/status", schedH.Status)
		r.Get("/user/{name}", schedH.UserJobs)
	})

	billsH := &handler.BillsHandler{Jobs: deps.Jobs, Core: deps.Core, Accounts: deps.Accounts}
	r.Post("/bills", billsH.Create)
	r.Post("/bills/remove", billsH.Remove)

	timersH := &handler.TimersHandler{Timers: deps.Timers}
	r.Route("/api/timers", func(r chi.Router) {
		r.Post("/", timersH.Save)
		r.Get("/", timersH.Get)
	})

	return r
}
