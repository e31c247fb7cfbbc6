package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

// BillsHandler creates and removes recurring jobs. The browser client
// sends a positional "parcel" array, a legacy contract we cannot change:
// [profile, kind, amount, interval, name, category, date].
type BillsHandler struct {
	Jobs     JobStore
	Core     Scheduler
	Accounts Accounts
}

func (h *BillsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parcel []json.RawMessage `json:"parcel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Parcel) < 6 {
		http.Error(w, "parcel needs [profile, kind, amount, interval, name, category, date?]", http.StatusBadRequest)
		return
	}

	owner, err := parcelString(req.Parcel[0])
	if err != nil {
		http.Error(w, "invalid profile", http.StatusBadRequest)
		return
	}
	kind, err := parcelString(req.Parcel[1])
	if err != nil {
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}
	amount, err := parcelDecimal(req.Parcel[2])
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	interval, err := parcelString(req.Parcel[3])
	if err != nil {
		http.Error(w, "invalid interval", http.StatusBadRequest)
		return
	}
	name, err := parcelString(req.Parcel[4])
	if err != nil {
		http.Error(w, "invalid name", http.StatusBadRequest)
		return
	}
	category, err := parcelString(req.Parcel[5])
	if err != nil {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}

	var start time.Time
	if len(req.Parcel) >= 7 {
		raw, err := parcelString(req.Parcel[6])
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		if raw != "" {
			start, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				http.Error(w, "invalid date (RFC3339)", http.StatusBadRequest)
				return
			}
		}
	}

	if _, err := h.Accounts.FindByOwner(r.Context(), owner); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "unknown owner", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	job, err := h.Jobs.CreateJob(r.Context(), sched.CreateJobInput{
		Owner:    owner,
		Kind:     sched.Kind(kind),
		Amount:   amount,
		Interval: sched.Interval(interval),
		Name:     name,
		Category: category,
		Start:    start,
	})
	if err != nil {
		if errors.Is(err, sched.ErrInvalidJob) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Core.Register(job)

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":           job.Key().String(),
		"ownerId":       job.Owner,
		"kind":          job.Kind,
		"amount":        job.Amount.String(),
		"interval":      job.Interval,
		"name":          job.Name,
		"category":      job.Category,
		"nextExecution": job.NextExecution,
	})
}

// Remove deactivates a job: parcel is [profile, kind, jobId].
func (h *BillsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parcel []json.RawMessage `json:"parcel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Parcel) != 3 {
		http.Error(w, "parcel needs [profile, kind, jobId]", http.StatusBadRequest)
		return
	}

	owner, err := parcelString(req.Parcel[0])
	if err != nil {
		http.Error(w, "invalid profile", http.StatusBadRequest)
		return
	}
	kind, err := parcelString(req.Parcel[1])
	if err != nil {
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}
	id, err := parcelUint(req.Parcel[2])
	if err != nil {
		http.Error(w, "invalid jobId", http.StatusBadRequest)
		return
	}

	key := sched.JobKey{Owner: owner, Kind: sched.Kind(kind), ID: id}
	if err := h.Jobs.Deactivate(r.Context(), key); err != nil {
		if errors.Is(err, sched.ErrJobNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.Core.Deactivate(key)

	w.WriteHeader(http.StatusNoContent)
}

func parcelString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// parcelDecimal accepts either a JSON number or a numeric string; the
// client sends both depending on the form.
func parcelDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return decimal.NewFromString(strings.TrimSpace(s))
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}

func parcelUint(raw json.RawMessage) (uint64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("jobId must be a positive integer: %w", err)
	}
	return id, nil
}
