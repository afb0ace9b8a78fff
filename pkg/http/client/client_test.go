package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":23096959,"name":"go","full_name":"golang/go"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequest(t *testing.T) {
	srv := newTestServer(t)
	c := MustClient(Option{ParseResponse: JSONResponse, BaseURL: srv.URL})

	var repo struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, c.Get("/repos/%s/%s", "golang", "go").Do(context.Background(), &repo))
	assert.Equal(t, "golang/go", repo.FullName)
	assert.EqualValues(t, 23096959, repo.ID)
}

func TestRequestResponseErr(t *testing.T) {
	srv := newTestServer(t)
	c := MustClient(Option{ParseResponse: JSONResponse, BaseURL: srv.URL})

	err := c.Get("/repos/golang/go1111").Do(context.Background(), nil)
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.Code)
}

func TestRawBody(t *testing.T) {
	srv := newTestServer(t)
	c := MustClient(Option{ParseResponse: JSONResponse, BaseURL: srv.URL})

	var b []byte
	require.NoError(t, c.Get("/repos/golang/go").Do(context.Background(), &b))
	assert.Contains(t, string(b), `"full_name":"golang/go"`)
}

func TestModifyRequest(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := MustClient(Option{
		ParseResponse: JSONResponse,
		BaseURL:       srv.URL,
		ModfityRequest: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer x")
		},
	})
	require.NoError(t, c.Post("/").Body(map[string]int{"a": 1}).Do(context.Background(), nil))
	assert.Equal(t, "Bearer x", got.Load())
}

func TestBreakerOpens(t *testing.T) {
	srv := newTestServer(t)
	c := MustClient(Option{
		ParseResponse: JSONResponse,
		BaseURL:       srv.URL,
		BreakerSetting: &gobreaker.Settings{
			Name: "test",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		},
	})

	for i := 0; i < 2; i++ {
		var re *ResponseError
		err := c.Get("/broken").Do(context.Background(), nil)
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusBadGateway, re.Code)
	}
	err := c.Get("/broken").Do(context.Background(), nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewClientRequiresParser(t *testing.T) {
	_, err := NewClient(Option{})
	assert.Error(t, err)
}
