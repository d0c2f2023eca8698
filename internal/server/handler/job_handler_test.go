package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) IngestJobs(ctx context.Context, docs []map[string]any) (int64, error) {
	args := m.Called(ctx, docs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobService) UploadBatch(ctx context.Context, rows []map[string]any) (string, int64, error) {
	args := m.Called(ctx, rows)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobService) BatchSummaries(ctx context.Context) ([]job.BatchSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.BatchSummary), args.Error(1)
}

func (m *MockJobService) BatchStats(ctx context.Context, batchID string) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobService) JobDetails(ctx context.Context, batchID string) (*job.Job, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobService) UpdateJobPayload(ctx context.Context, jobID string, data []job.Record) (*job.UpdateResult, error) {
	args := m.Called(ctx, jobID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.UpdateResult), args.Error(1)
}

func (m *MockJobService) MergeAgreementEntry(ctx context.Context, jobID string, agreementNumber any, entry job.Record) (*job.MergeResult, error) {
	args := m.Called(ctx, jobID, agreementNumber, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.MergeResult), args.Error(1)
}

func (m *MockJobService) CheckAgreement(ctx context.Context, agreementNumber any, requestedJobID string) (*job.AgreementMatch, error) {
	args := m.Called(ctx, agreementNumber, requestedJobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.AgreementMatch), args.Error(1)
}

func (m *MockJobService) CheckStatusMatch(ctx context.Context, agreementNumber any) (*job.Record, error) {
	args := m.Called(ctx, agreementNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Record), args.Error(1)
}

func (m *MockJobService) FindJobByAgreement(ctx context.Context, agreementNumber any, jobIDHint string) (*job.Job, error) {
	args := m.Called(ctx, agreementNumber, jobIDHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobService) CountAgreements(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobService) CountMatched(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func decodeResponse(t *testing.T, body *bytes.Buffer) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

func TestJobHandler_Upload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		rows := []map[string]any{
			{"Agreement Number": "5123456789", "Customer Name": "Priya Sharma"},
		}
		mockService.On("UploadBatch", mock.Anything, mock.AnythingOfType("[]map[string]interface {}")).
			Return("1714497600000", int64(1), nil).Once()

		router := setupTestRouter()
		router.POST("/docuflow/jobs/upload", handler.Upload)

		jsonBody, _ := json.Marshal(rows)
		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/upload", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		assert.True(t, resp.Success)
		assert.Equal(t, "Data uploaded successfully!", resp.Message)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "1714497600000", data["batchId"])
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/docuflow/jobs/upload", handler.Upload)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/upload", bytes.NewBufferString("[]"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeResponse(t, rr.Body)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
		mockService.AssertNotCalled(t, "UploadBatch", mock.Anything, mock.Anything)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/docuflow/jobs/upload", handler.Upload)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/upload", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJobHandler_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		result := &job.UpdateResult{MatchedCount: 1, ModifiedCount: 1, Strategy: job.LookupBatchID}
		mockService.On("UpdateJobPayload", mock.Anything, "1714497600000", mock.AnythingOfType("[]job.Record")).
			Return(result, nil).Once()

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update", handler.Update)

		body, _ := json.Marshal(UpdateJobRequest{
			JobID:       "1714497600000",
			UpdatedData: []job.Record{{AgreementNumber: "5123456789", Status: job.StatusMatched}},
		})
		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		assert.Equal(t, "Job updated successfully!", resp.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingJobID", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update", handler.Update)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update", bytes.NewBufferString(`{"updatedData":[]}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("UpdateJobPayload", mock.Anything, "missing", mock.Anything).
			Return(nil, job.ErrJobNotFound{ID: "missing"}).Once()

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update", handler.Update)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update", bytes.NewBufferString(`{"jobId":"missing"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InternalError", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("UpdateJobPayload", mock.Anything, "1714497600000", mock.Anything).
			Return(nil, errors.New("store unavailable")).Once()

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update", handler.Update)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update", bytes.NewBufferString(`{"jobId":"1714497600000"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestJobHandler_MergeAgreement(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		result := &job.MergeResult{JobID: "1714497600000", ModifiedCount: 1, Replaced: true}
		mockService.On("MergeAgreementEntry", mock.Anything, "1714497600000", mock.Anything, mock.AnythingOfType("job.Record")).
			Return(result, nil).Once()

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update-job-agreement", handler.MergeAgreement)

		body := `{"jobId":"1714497600000","agreementNumber":5123456789,"updatedEntry":{"Agreement Number":5123456789,"status":"Matched"}}`
		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update-job-agreement", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "1714497600000", data["jobId"])
		mockService.AssertExpectations(t)
	})

	t.Run("MissingAgreementNumber", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.POST("/docuflow/jobs/update-job-agreement", handler.MergeAgreement)

		req, _ := http.NewRequest(http.MethodPost, "/docuflow/jobs/update-job-agreement", bytes.NewBufferString(`{"jobId":"1714497600000"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJobHandler_Stats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("BatchStats", mock.Anything, "1714497600000").Return(int64(7), nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/jobs/stats", handler.Stats)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/stats?batchId=1714497600000", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(7), data["matchedCount"])
	})

	t.Run("MissingBatchID", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/docuflow/jobs/stats", handler.Stats)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/stats", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "BatchStats", mock.Anything, mock.Anything)
	})
}

func TestJobHandler_CheckAgreement(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		match := &job.AgreementMatch{
			Exists:         true,
			MatchedEntry:   &job.Record{AgreementNumber: "5123456789"},
			JobID:          "66a0f1c2d3e4f5a6b7c8d9e0",
			IsRequestedJob: true,
		}
		mockService.On("CheckAgreement", mock.Anything, "5123456789", "66a0f1c2d3e4f5a6b7c8d9e0").
			Return(match, nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/jobs/check-job-agreement", handler.CheckAgreement)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/check-job-agreement?agreementNumber=5123456789&jobId=66a0f1c2d3e4f5a6b7c8d9e0", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["exists"])
		assert.Equal(t, true, data["isRequestedJob"])
	})

	t.Run("MissIsOK", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("CheckAgreement", mock.Anything, "5999999999", "").
			Return(&job.AgreementMatch{}, nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/jobs/check-job-agreement", handler.CheckAgreement)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/check-job-agreement?agreementNumber=5999999999", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, false, data["exists"])
	})

	t.Run("MissingAgreementNumber", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		router := setupTestRouter()
		router.GET("/docuflow/jobs/check-job-agreement", handler.CheckAgreement)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/check-job-agreement", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJobHandler_CheckMatch(t *testing.T) {
	t.Run("Matched", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		entry := &job.Record{AgreementNumber: "5123456789", Status: job.StatusMatched}
		mockService.On("CheckStatusMatch", mock.Anything, "5123456789").Return(entry, nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/jobs/check-match", handler.CheckMatch)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/check-match?agreementNumber=5123456789", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["isMatched"])
		assert.NotNil(t, data["matchedEntry"])
	})

	t.Run("NotMatched", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("CheckStatusMatch", mock.Anything, "5999999999").Return(nil, nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/jobs/check-match", handler.CheckMatch)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/check-match?agreementNumber=5999999999", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeResponse(t, rr.Body)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, false, data["isMatched"])
	})
}

func TestJobHandler_Counts(t *testing.T) {
	mockService := new(MockJobService)
	handler := NewJobHandler(testLogger(), mockService)

	mockService.On("CountAgreements", mock.Anything).Return(int64(120), nil).Once()
	mockService.On("CountMatched", mock.Anything).Return(int64(45), nil).Once()

	router := setupTestRouter()
	router.GET("/docuflow/jobs/count-agreements", handler.CountAgreements)
	router.GET("/docuflow/jobs/count-matched", handler.CountMatched)

	req, _ := http.NewRequest(http.MethodGet, "/docuflow/jobs/count-agreements", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr.Body)
	assert.Equal(t, float64(120), resp.Data.(map[string]interface{})["totalAgreements"])

	req, _ = http.NewRequest(http.MethodGet, "/docuflow/jobs/count-matched", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	resp = decodeResponse(t, rr.Body)
	assert.Equal(t, float64(45), resp.Data.(map[string]interface{})["matchedCount"])

	mockService.AssertExpectations(t)
}

func TestJobHandler_FetchJobByAgreement(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		mockService.On("FindJobByAgreement", mock.Anything, "5999999999", "").
			Return(nil, job.ErrJobNotFound{ID: "5999999999"}).Once()

		router := setupTestRouter()
		router.GET("/docuflow/citi_data/fetch-job-by-agreement", handler.FetchJobByAgreement)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/citi_data/fetch-job-by-agreement?agreementNumber=5999999999", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Found", func(t *testing.T) {
		mockService := new(MockJobService)
		handler := NewJobHandler(testLogger(), mockService)

		j := &job.Job{BatchID: "1714497600000"}
		mockService.On("FindJobByAgreement", mock.Anything, "5123456789", "1714497600000").
			Return(j, nil).Once()

		router := setupTestRouter()
		router.GET("/docuflow/citi_data/fetch-job-by-agreement", handler.FetchJobByAgreement)

		req, _ := http.NewRequest(http.MethodGet, "/docuflow/citi_data/fetch-job-by-agreement?agreementNumber=5123456789&jobId=1714497600000", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
