package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/lesson"
)

// TimersHandler stores lesson-timer progress for the lesson engine.
// External collaborator state, not scheduler state.
type TimersHandler struct {
	Timers Timers
}

type saveTimerReq struct {
	StudentID   string `json:"studentId"`
	LessonID    string `json:"lessonId"`
	ElapsedTime int64  `json:"elapsedTime"`
}

func (h *TimersHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveTimerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.LessonID = strings.TrimSpace(req.LessonID)
	if req.StudentID == "" || req.LessonID == "" || req.ElapsedTime < 0 {
		http.Error(w, "studentId, lessonId and non-negative elapsedTime required", http.StatusBadRequest)
		return
	}

	if err := h.Timers.Save(r.Context(), req.StudentID, req.LessonID, req.ElapsedTime); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *TimersHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(r.URL.Query().Get("studentId"))
	lessonID := strings.TrimSpace(r.URL.Query().Get("lessonId"))
	if studentID == "" || lessonID == "" {
		http.Error(w, "studentId and lessonId required", http.StatusBadRequest)
		return
	}

	elapsed, err := h.Timers.Get(r.Context(), studentID, lessonID)
	if err != nil {
		if errors.Is(err, lesson.ErrTimerNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"elapsedTime": elapsed})
}
