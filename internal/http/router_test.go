package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/config"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

type stubJobs struct{}

func (stubJobs) CreateJob(context.Context, sched.CreateJobInput) (*sched.Job, error) {
	return nil, sched.ErrInvalidJob
}
func (stubJobs) ListActiveJobs(context.Context, string) ([]*sched.Job, error) { return nil, nil }
func (stubJobs) Deactivate(context.Context, sched.JobKey) error {
	return sched.ErrJobNotFound
}

type stubScheduler struct{}

func (stubScheduler) Register(*sched.Job)     {}
func (stubScheduler) Deactivate(sched.JobKey) {}
func (stubScheduler) Snapshot() sched.Status {
	return sched.Status{TotalScheduledJobs: 0, Jobs: []sched.JobStatus{}}
}

type stubAccounts struct{}

func (stubAccounts) FindByOwner(context.Context, string) (*account.Account, error) {
	return nil, account.ErrNotFound
}

type stubTimers struct{}

func (stubTimers) Save(context.Context, string, string, int64) error { return nil }
func (stubTimers) Get(context.Context, string, string) (int64, error) {
	return 42, nil
}

func testRouter() http.Handler {
	return NewRouter(config.Config{}, Deps{
		Jobs:     stubJobs{},
		Core:     stubScheduler{},
		Accounts: stubAccounts{},
		Timers:   stubTimers{},
	})
}

func TestRouter_Routes(t *testing.T) {
	r := testRouter()

	cases := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/scheduler/status", http.StatusOK},
		{http.MethodGet, "/scheduler/user/nobody", http.StatusNotFound},
		{http.MethodGet, "/api/timers?studentId=s&lessonId=l", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_StatusBody(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/scheduler/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalScheduledJobs":0,"jobs":[]}`, w.Body.String())
}
