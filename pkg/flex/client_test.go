package flex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "secret-key", ReportID: "rpt-1"})
}

// ==================== 报表 ====================

func TestClient_FetchReport(t *testing.T) {
	csvText := "Category Id,Category Name\nC1,Home\n"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/f5/api/report/generate/rpt-1", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-Auth-Token"))
		assert.Equal(t, "true", r.URL.Query().Get("parameterSubmission"))
		assert.Equal(t, "csv", r.URL.Query().Get("REPORT_FORMAT"))
		assert.Equal(t, "portrait", r.URL.Query().Get("REPORT_ORIENTATION"))
		_, _ = w.Write([]byte(base64.StdEncoding.EncodeToString([]byte(csvText))))
	})

	got, err := client.FetchReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csvText, got)
}

func TestClient_FetchReport_Non2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.FetchReport(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.Status)
	assert.Contains(t, te.Message, "boom")
}

func TestClient_FetchReport_BadBase64(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%%% not base64 %%%"))
	})

	_, err := client.FetchReport(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
}

func TestClient_VerifyCredentials(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		reportID  string
		wantValid bool
		wantErr   error
	}{
		{"报表存在", http.StatusOK, "rpt-1", true, nil},
		{"报表不存在", http.StatusOK, "rpt-404", false, nil},
		{"Key 无效", http.StatusUnauthorized, "rpt-1", false, ErrInvalidAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/f5/api/report/custom-report", r.URL.Path)
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode([]Report{{ID: "rpt-0", Name: "a"}, {ID: "rpt-1", Name: "Inventory"}})
			})

			valid, err := client.VerifyCredentials(context.Background(), tt.reportID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}

func TestClient_VerifyCredentials_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.VerifyCredentials(context.Background(), "rpt-1")
	assert.NotErrorIs(t, err, ErrInvalidAPIKey)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.Status)
}

// ==================== 联系人 ====================

func TestClient_SearchContacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/f5/api/contact/search", r.URL.Path)
		assert.Equal(t, "Jane Doe", q.Get("searchText"))
		assert.Equal(t, "false", q.Get("onlyOrganizations"))
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "100", q.Get("size"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"empty":false,"totalElements":1,"content":[{"id":"c-1","name":"Jane Doe","company":null,"email":"jane@example.com","organization":false}]}`))
	})

	res, err := client.SearchContacts(context.Background(), ContactQuery{SearchText: "Jane Doe", Size: 100})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "c-1", res.Content[0].ID)
	assert.Nil(t, res.Content[0].Company)
	assert.Equal(t, "jane@example.com", *res.Content[0].Email)
}

func TestClient_CreateContact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/f5/api/contact", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["organization"])
		assert.Equal(t, "Acme", body["company"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"org-1","organization":true}`))
	})

	company := "Acme"
	contact, err := client.CreateContact(context.Background(), &CreateContactRequest{Organization: true, Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "org-1", contact.ID)
}

// ==================== 工单 ====================

func TestClient_CreateElement_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.CreateElement(context.Background(), &CreateElementRequest{})
	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

func TestClient_AddResource(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/f5/api/financial-document-line-item/el-1/add-resource/P1", r.URL.Path)
		assert.Equal(t, "inventory-model", r.URL.Query().Get("managedResourceLineItemType"))
		assert.Equal(t, "3", r.URL.Query().Get("quantity"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.AddResource(context.Background(), "el-1", "P1", 3))
	assert.True(t, called)
}

func TestClient_UpdateElementHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/f5/api/element/el-1/header-update", r.URL.Path)
		var body HeaderUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "customContactOneId", body.FieldType)
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.UpdateElementHeader(context.Background(), "el-1", &HeaderUpdateRequest{FieldType: "customContactOneId"})
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.Status)
}
