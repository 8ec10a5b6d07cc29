package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/", WithLogger(zaptest.NewLogger(t)), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := New("ftp://example.com")
	require.Error(t, err)
	_, err = New("://bad")
	require.Error(t, err)
}

func TestClient_ListEndpoints(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":7,"name":"Ibuprofen","quantity":3,"expiryDate":"2025-08-01","addedDate":"2025-01-02T03:04:05Z","userId":2}]`)
	})
	ctx := context.Background()

	out, err := c.List(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "/api/medicines", gotPath)
	require.Equal(t, "userId=2", gotQuery)
	require.Len(t, out, 1)
	require.Equal(t, model.NewDate(2025, 8, 1), out[0].ExpiryDate)
	require.Equal(t, int64(2), out[0].UserID)

	_, err = c.Expired(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "/api/medicines/expired", gotPath)

	_, err = c.ExpiringSoon(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "/api/medicines/expiring-soon", gotPath)

	_, err = c.LowStock(ctx, 2, 10)
	require.NoError(t, err)
	require.Equal(t, "/api/medicines/low-stock", gotPath)
	require.Equal(t, "threshold=10&userId=2", gotQuery)

	_, err = c.Search(ctx, 2, "ibu pro")
	require.NoError(t, err)
	require.Equal(t, "/api/medicines/search", gotPath)
	require.Equal(t, "name=ibu+pro&userId=2", gotQuery)
}

func TestClient_EmptyListIsNotNil(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	out, err := c.List(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestClient_CreateUpdateDelete(t *testing.T) {
	t.Parallel()

	in := model.MedicineInput{Name: "Amoxicillin", Quantity: 12, ExpiryDate: model.NewDate(2026, 2, 1), UserID: 3}
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost, http.MethodPut:
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "Amoxicillin", body["name"])
			require.Equal(t, "2026-02-01", body["expiryDate"])
			require.Equal(t, float64(3), body["userId"])
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusCreated)
			}
			_, _ = io.WriteString(w, `{"id":11,"name":"Amoxicillin","quantity":12,"expiryDate":"2026-02-01","userId":3}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	m, err := c.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, int64(11), m.ID)

	m, err = c.Update(ctx, 11, in)
	require.NoError(t, err)
	require.Equal(t, 12, m.Quantity)

	require.NoError(t, c.Delete(ctx, 11))
	require.Equal(t, []string{"POST /api/medicines", "PUT /api/medicines/11", "DELETE /api/medicines/11"}, seen)
}

func TestClient_Non2xx_IsFetchError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/medicines/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, "Error: Expiry date cannot be in the past", http.StatusBadRequest)
	})
	ctx := context.Background()

	_, err := c.Create(ctx, model.MedicineInput{Name: "X"})
	require.ErrorIs(t, err, errs.ErrFetchFailed)
	require.NotErrorIs(t, err, errs.ErrNotFound)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusBadRequest, fe.StatusCode)
	require.Equal(t, "Error: Expiry date cannot be in the past", fe.Message)
	require.Equal(t, "add medicine: Error: Expiry date cannot be in the past", err.Error())

	_, err = c.Get(ctx, 404)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "get medicine: 404 Not Found", err.Error())
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	_, err = c.List(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrFetchFailed)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.NotNil(t, fe.Err)
}

func TestClient_BadJSON(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	})
	_, err := c.Get(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrFetchFailed)
}

func TestClient_EmptyBodyIsFetchError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
		}
	})
	ctx := context.Background()
	in := model.MedicineInput{Name: "Aspirin", Quantity: 1, ExpiryDate: model.NewDate(2030, 1, 1), UserID: 1}

	_, err := c.Get(ctx, 1)
	require.ErrorIs(t, err, errs.ErrFetchFailed)
	require.ErrorIs(t, err, ErrEmptyResponse)
	require.Equal(t, "get medicine: empty response", err.Error())

	_, err = c.Create(ctx, in)
	require.ErrorIs(t, err, ErrEmptyResponse)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusCreated, fe.StatusCode)

	_, err = c.Update(ctx, 1, in)
	require.ErrorIs(t, err, ErrEmptyResponse)

	// Delete expects no body.
	require.NoError(t, c.Delete(ctx, 1))
}

func TestClient_ContextCancel(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.List(ctx, 1)
	require.ErrorIs(t, err, errs.ErrFetchFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
