package economy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredit_Success(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.Credit(context.Background(), "u-1"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/stipend/u-1", gotPath)
}

func TestCredit_NotDueYetIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Next stipend not available yet", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.NoError(t, client.Credit(context.Background(), "u-1"))
}

func TestCredit_OtherBadRequestIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "No such user", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Credit(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such user")
}

func TestCredit_ServerErrorIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broke", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Credit(context.Background(), "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "broke", "the response body belongs in the error")
}

func TestCredit_EscapesUserID(t *testing.T) {
	var gotRawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.Credit(context.Background(), "u/1"))
	assert.Equal(t, "/stipend/u%2F1", gotRawPath)
}

func TestCredit_EmptyUserID(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second)
	assert.Error(t, client.Credit(context.Background(), ""))
}

func TestCredit_TimeoutBoundsTheCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	err := client.Credit(context.Background(), "u-1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
