package web_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dfiru/simulchip/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json; charset=utf-8")
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer ts.Close()
	client := web.NewClient(web.Config{}, http.DefaultClient)

	resp, err := client.Get(context.Background(), ts.URL, web.NewGetOpts())
	require.NoError(t, err)
	content, err := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":[]}`), content)
	assert.Equal(t, web.MimeTypeJSON, resp.MimeType.Raw())
}

func TestGet_SendsDefaultHeaders(t *testing.T) {
	var userAgent, accept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get(web.HeaderUserAgent)
		accept = r.Header.Get(web.HeaderAccept)
	}))
	defer ts.Close()
	client := web.NewClient(web.Config{}, http.DefaultClient)

	resp, err := client.Get(context.Background(), ts.URL, web.NewGetOpts())
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, web.DefaultUserAgent, userAgent)
	assert.Equal(t, web.MimeTypeJSON, accept)
}

func TestGet_ApiError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	client := web.NewClient(web.Config{}, http.DefaultClient)

	_, err := client.Get(context.Background(), ts.URL+"/nothing", web.NewGetOpts())

	var apiErr *web.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, web.IsNotFound(err))
}

func TestGet_ExpectedCodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()
	client := web.NewClient(web.Config{}, http.DefaultClient)

	resp, err := client.Get(context.Background(), ts.URL, web.NewGetOpts().WithExpectedCodes(http.StatusNoContent))
	require.NoError(t, err)
	resp.Body.Close()

	_, err = client.Get(context.Background(), ts.URL, web.NewGetOpts())
	assert.Error(t, err, "204 is not expected by default")
}

func TestGet_RetriesRetrieableStatus(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()
	cfg := web.Config{
		Retries:     2,
		Retrieables: []int{http.StatusServiceUnavailable},
		RetryDelay:  time.Millisecond,
	}
	client := web.NewClient(cfg, http.DefaultClient)

	resp, err := client.Get(context.Background(), ts.URL, web.NewGetOpts())
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(2), requests.Load())
}

func TestGet_RetryBudgetSpent(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	cfg := web.Config{
		Retries:     2,
		Retrieables: []int{http.StatusTooManyRequests},
		RetryDelay:  time.Millisecond,
	}
	client := web.NewClient(cfg, http.DefaultClient)

	_, err := client.Get(context.Background(), ts.URL, web.NewGetOpts())

	require.Error(t, err)
	assert.True(t, web.IsStatusCode(err, http.StatusTooManyRequests))
	assert.Equal(t, int32(3), requests.Load(), "initial request plus two retries")
}

func TestGet_NoRetryOnOtherStatus(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	cfg := web.Config{
		Retries:     2,
		Retrieables: []int{http.StatusServiceUnavailable},
		RetryDelay:  time.Millisecond,
	}
	client := web.NewClient(cfg, http.DefaultClient)

	_, err := client.Get(context.Background(), ts.URL, web.NewGetOpts())

	require.Error(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestNewGetOpts(t *testing.T) {
	want := web.GetOptions{
		Header: map[string]string{
			"content-length": "1",
		},
		StatusCodes: []int{201, 204},
	}

	actual := web.NewGetOpts().
		WithHeader("content-length", "1").
		WithExpectedCodes(201, 204)

	assert.Equal(t, want, actual)
}
