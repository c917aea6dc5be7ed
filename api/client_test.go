package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/callview/query"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := NewClient(Config{BaseURL: ts.URL + "/mango/", Token: "testtoken", Timeout: time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestListCalls(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_rows": 2, "results": [
			{"id": 7, "date_notime": "2024-01-05", "in_out": 1, "record": "abc", "partnership_id": "578"},
			{"id": 8, "date_notime": "2024-01-04", "in_out": 0}
		]}`))
	})

	params := query.Params{}.Add("in_out", "1").Add("date_start", "2024-01-01").Add("date_end", "2024-01-05")
	resp, err := c.ListCalls(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/mango/getList", gotPath)
	assert.Equal(t, "in_out=1&date_start=2024-01-01&date_end=2024-01-05", gotQuery)
	assert.Equal(t, "Bearer testtoken", gotAuth)
	assert.NotEmpty(t, gotRequestID)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 7, resp.Results[0].ID)
	assert.True(t, resp.Results[0].Inbound())
	assert.False(t, resp.Results[1].Inbound())
	assert.EqualValues(t, 2, resp.TotalRows)
}

func TestListCallsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := c.ListCalls(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestListCallsBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	})

	_, err := c.ListCalls(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestListCallsCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListCalls(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchRecord(t *testing.T) {
	audio := []byte("ID3\x03\x00fake-mp3")
	var gotQuery, gotDisposition string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mango/getRecord", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotQuery = r.URL.RawQuery
		gotDisposition = r.Header.Get("Content-Disposition")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	})

	got, err := c.FetchRecord(context.Background(), "MToxMDA2=", "578")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
	assert.Equal(t, "record=MToxMDA2%3D&partnership_id=578", gotQuery)
	assert.Equal(t, `filename="record.mp3"`, gotDisposition)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "api.skilla.ru/mango"}, nil)
	assert.Error(t, err)
}
