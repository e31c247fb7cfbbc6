package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

type SchedulerHandler struct {
	Core     Scheduler
	Jobs     JobStore
	Accounts Accounts
}

// Status serves GET /scheduler/status from the live registry.
func (h *SchedulerHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Core.Snapshot())
}

type jobView struct {
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	Interval      string    `json:"interval"`
	NextExecution time.Time `json:"nextExecution"`
}

// UserJobs serves GET /scheduler/user/{name}: the owner's active jobs
// grouped into bills and payments.
func (h *SchedulerHandler) UserJobs(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "name")

	if _, err := h.Accounts.FindByOwner(r.Context(), owner); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "unknown owner", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	jobs, err := h.Jobs.ListActiveJobs(r.Context(), owner)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	bills := []jobView{}
	payments := []jobView{}
	for _, j := range jobs {
		v := jobView{
			Key:           j.Key().String(),
			Name:          j.Name,
			Category:      j.Category,
			Amount:        j.Amount.String(),
			Interval:      string(j.Interval),
			NextExecution: j.NextExecution,
		}
		if j.Kind == sched.KindBill {
			bills = append(bills, v)
		} else {
			payments = append(payments, v)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bills":    bills,
		"payments": payments,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
