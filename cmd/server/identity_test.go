package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"canvas-lab/domain"
)

func TestWithIdentity_Resolves_Header(t *testing.T) {
	req := require.New(t)

	var resolved domain.UserID
	var ok bool
	handler := WithIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, ok = contextIdentity{}.CurrentUser(r.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/ws", nil)
	request.Header.Set("X-User-ID", "alice")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	req.True(ok)
	req.Equal(domain.UserID("alice"), resolved)
}

func TestWithIdentity_Missing_Header_Means_Nobody(t *testing.T) {
	req := require.New(t)

	var ok bool
	handler := WithIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = contextIdentity{}.CurrentUser(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))

	req.False(ok)
}
