package leave_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency-hr/internal/domain"
	"agency-hr/internal/leave"
	leaveerrors "agency-hr/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeLeaveService struct {
	createFn           func(ctx context.Context, actor domain.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	getAllFn           func(ctx context.Context, actor domain.Actor) ([]leave.LeaveResponse, error)
	getMineFn          func(ctx context.Context, actor domain.Actor) ([]leave.LeaveResponse, error)
	getByIDFn          func(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error)
	approveFn          func(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error)
	rejectFn           func(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error)
	estimateDaysFn     func(req leave.EstimateDaysRequest) (leave.EstimateDaysResponse, error)
	currentlyOnLeaveFn func(ctx context.Context, today time.Time) ([]leave.LeaveResponse, error)
	balanceForFn       func(ctx context.Context, employeeID string, year int) (leave.BalanceResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, actor domain.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.createFn(ctx, actor, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context, actor domain.Actor) ([]leave.LeaveResponse, error) {
	return f.getAllFn(ctx, actor)
}
func (f *fakeLeaveService) GetMine(ctx context.Context, actor domain.Actor) ([]leave.LeaveResponse, error) {
	return f.getMineFn(ctx, actor)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error) {
	return f.getByIDFn(ctx, actor, id)
}
func (f *fakeLeaveService) Approve(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error) {
	return f.approveFn(ctx, actor, id)
}
func (f *fakeLeaveService) Reject(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error) {
	return f.rejectFn(ctx, actor, id)
}
func (f *fakeLeaveService) EstimateDays(req leave.EstimateDaysRequest) (leave.EstimateDaysResponse, error) {
	return f.estimateDaysFn(req)
}
func (f *fakeLeaveService) CurrentlyOnLeave(ctx context.Context, today time.Time) ([]leave.LeaveResponse, error) {
	return f.currentlyOnLeaveFn(ctx, today)
}
func (f *fakeLeaveService) BalanceFor(ctx context.Context, employeeID string, year int) (leave.BalanceResponse, error) {
	return f.balanceForFn(ctx, employeeID, year)
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success files request for the authenticated employee", func(t *testing.T) {
		actorID := uuid.New().String()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, actor domain.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, actorID, actor.EmployeeID)
				return leave.LeaveResponse{
					ID:         uuid.New().String(),
					EmployeeID: actor.EmployeeID,
					LeaveType:  req.LeaveType,
					StartDate:  req.StartDate,
					EndDate:    req.EndDate,
					TotalDays:  2,
					Reason:     req.Reason,
					Status:     leave.StatusPending,
				}, nil
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type":"vacation","start_date":"2026-03-10","end_date":"2026-03-11","reason":"family matters"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("user_id", uuid.New().String())
		c.Set("employee_id", actorID)
		c.Set("role", domain.RoleEmployee)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		err := json.Unmarshal(env.Data, &got)
		assert.NoError(t, err)
		assert.Equal(t, actorID, got.EmployeeID)
		assert.Equal(t, "vacation", got.LeaveType)
		assert.Equal(t, leave.StatusPending, got.Status)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type":"sabbatical","start_date":"2026-03-10","end_date":"2026-03-11"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative service error", func(t *testing.T) {
		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, actor domain.Actor, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, errors.New("create failed")
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"leave_type":"sick","start_date":"2026-03-10","end_date":"2026-03-11"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	})
}

func TestLeaveHandler_Approve(t *testing.T) {
	t.Run("decided request maps to invalid state", func(t *testing.T) {
		svc := &fakeLeaveService{
			approveFn: func(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves/abc/approve", nil)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Set("employee_id", uuid.New().String())
		c.Set("role", domain.RoleManager)

		h.Approve(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("success returns approved request", func(t *testing.T) {
		leaveID := uuid.New().String()
		svc := &fakeLeaveService{
			approveFn: func(ctx context.Context, actor domain.Actor, id string) (leave.LeaveResponse, error) {
				assert.Equal(t, leaveID, id)
				return leave.LeaveResponse{ID: id, Status: leave.StatusApproved}, nil
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves/"+leaveID+"/approve", nil)
		c.Params = gin.Params{{Key: "id", Value: leaveID}}
		c.Set("employee_id", uuid.New().String())
		c.Set("role", domain.RoleAdmin)

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusApproved, got.Status)
	})
}

func TestLeaveHandler_Balance(t *testing.T) {
	t.Run("defaults to the current year", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakeLeaveService{
			balanceForFn: func(ctx context.Context, id string, year int) (leave.BalanceResponse, error) {
				assert.Equal(t, employeeID, id)
				assert.Equal(t, time.Now().UTC().Year(), year)
				return leave.BalanceResponse{EmployeeID: id, Year: year, Annual: 22, Taken: 5, Balance: 17}, nil
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves/balance/"+employeeID, nil)
		c.Params = gin.Params{{Key: "employeeID", Value: employeeID}}

		h.Balance(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.BalanceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 17, got.Balance)
	})

	t.Run("honors explicit year query", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakeLeaveService{
			balanceForFn: func(ctx context.Context, id string, year int) (leave.BalanceResponse, error) {
				assert.Equal(t, 2024, year)
				return leave.BalanceResponse{EmployeeID: id, Year: year, Annual: 22, Taken: 0, Balance: 22}, nil
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves/balance/"+employeeID+"?year=2024", nil)
		c.Params = gin.Params{{Key: "employeeID", Value: employeeID}}

		h.Balance(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative bad year query", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves/balance/x?year=banana", nil)
		c.Params = gin.Params{{Key: "employeeID", Value: "x"}}

		h.Balance(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestLeaveHandler_Current(t *testing.T) {
	t.Run("passes explicit date through", func(t *testing.T) {
		svc := &fakeLeaveService{
			currentlyOnLeaveFn: func(ctx context.Context, today time.Time) ([]leave.LeaveResponse, error) {
				assert.Equal(t, 2026, today.Year())
				assert.Equal(t, time.March, today.Month())
				return []leave.LeaveResponse{{ID: uuid.New().String(), Status: leave.StatusApproved}}, nil
			},
		}
		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves/current?date=2026-03-04", nil)

		h.Current(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative bad date query", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves/current?date=03-04-2026", nil)

		h.Current(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}
