package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nemcli/internal/nem12"
)

func nem12Fixture(value string) string {
	rows := []string{
		"100,NEM12,200506081149,MDA,RETAILER",
		"200,ABC123456,E1E2,1,E1,N1,01009,kWh,30,20250101",
		"300,20250101," + value + "," + value + ",A,,,20250101121300",
		"900",
	}
	return strings.Join(rows, "\n") + "\n"
}

func multipartBody(t *testing.T, fields map[string]string, fileFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, content := range fileFields {
		fw, err := w.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for field, value := range fields {
		require.NoError(t, w.WriteField(field, value))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCompareEndpoint(t *testing.T) {
	router := NewRouter(nil)

	body, contentType := multipartBody(t, nil, map[string]string{
		"before": nem12Fixture("1.234"),
		"after":  nem12Fixture("1.235"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result nem12.ComparisonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Issues, 2)
	for _, issue := range result.Issues {
		assert.Equal(t, nem12.IssueValueMismatch, issue.Type)
	}
	assert.Equal(t, "before.csv", result.Metadata.BeforeFileName)
	assert.Equal(t, "after.csv", result.Metadata.AfterFileName)
	assert.Equal(t, "before", result.Metadata.ReportName)
}

func TestCompareEndpointWithTolerance(t *testing.T) {
	router := NewRouter(nil)

	body, contentType := multipartBody(t,
		map[string]string{"tolerance": "0.01"},
		map[string]string{
			"before": nem12Fixture("1.234"),
			"after":  nem12Fixture("1.235"),
		})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result nem12.ComparisonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Issues)
}

func TestCompareEndpointMissingFile(t *testing.T) {
	router := NewRouter(nil)

	body, contentType := multipartBody(t, nil, map[string]string{
		"before": nem12Fixture("1.0"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareEndpointInvalidTolerance(t *testing.T) {
	router := NewRouter(nil)

	body, contentType := multipartBody(t,
		map[string]string{"tolerance": "not-a-number"},
		map[string]string{
			"before": nem12Fixture("1.0"),
			"after":  nem12Fixture("1.0"),
		})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareEndpointEmptyUpload(t *testing.T) {
	router := NewRouter(nil)

	body, contentType := multipartBody(t, nil, map[string]string{
		"before": "  \n",
		"after":  nem12Fixture("1.0"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthzEndpoint(t *testing.T) {
	router := NewRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
