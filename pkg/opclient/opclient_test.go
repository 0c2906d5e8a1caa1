package opclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cynit/hub/pkg/opclient"
	"github.com/stretchr/testify/require"
)

func TestMergeScopesAddsMandatory(t *testing.T) {
	merged := opclient.MergeScopes(opclient.DefaultMandatoryScopes, "custom_scope another_scope")

	parts := strings.Fields(merged)
	for _, want := range opclient.DefaultMandatoryScopes {
		require.Contains(t, parts, want)
	}
	require.Contains(t, parts, "custom_scope")
	require.Contains(t, parts, "another_scope")
}

func TestMergeScopesSortedAndDeduplicated(t *testing.T) {
	merged := opclient.MergeScopes([]string{"b_scope", "a_scope"}, "a_scope c_scope c_scope")
	require.Equal(t, "a_scope b_scope c_scope", merged)
}

func TestMergeScopesIdempotent(t *testing.T) {
	once := opclient.MergeScopes(opclient.DefaultMandatoryScopes, "vo_info extra")
	twice := opclient.MergeScopes(opclient.DefaultMandatoryScopes, once)
	require.Equal(t, once, twice)
}

func TestMergeScopesEmptyUserInput(t *testing.T) {
	merged := opclient.MergeScopes([]string{"b", "a"}, "   ")
	require.Equal(t, "a b", merged)
}

func TestAssertionGrantSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/token", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "kid-123", r.PostForm.Get("audience"))
		require.Equal(t, opclient.AssertionType, r.PostForm.Get("client_assertion_type"))
		require.Equal(t, "signed.jwt.here", r.PostForm.Get("client_assertion"))
		require.Equal(t, "a_scope b_scope", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-abc","token_type":"Bearer","expires_in":3600,"scope":"a_scope b_scope"}`))
	}))
	defer srv.Close()

	client := opclient.New(srv.URL)
	resp, err := client.AssertionGrant(context.Background(), "signed.jwt.here", "kid-123", "a_scope b_scope")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", resp.AccessToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 3600, resp.ExpiresIn)
	require.Equal(t, "a_scope b_scope", resp.Scope)
}

func TestAssertionGrantDeniedSurfacesBodyVerbatim(t *testing.T) {
	const body = `{"error":"invalid_scope","error_description":"scope dvl_nope is not registered"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := opclient.New(srv.URL)
	_, err := client.AssertionGrant(context.Background(), "signed.jwt.here", "kid-123", "dvl_nope")
	require.Error(t, err)

	var xerr *opclient.ExchangeError
	require.True(t, errors.As(err, &xerr))
	require.Equal(t, http.StatusBadRequest, xerr.Status)
	require.Equal(t, body, xerr.Body)
}

func TestAssertionGrantNoRetry(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := opclient.New(srv.URL)
	_, err := client.AssertionGrant(context.Background(), "signed.jwt.here", "kid-123", "")
	require.Error(t, err)
	require.Equal(t, 1, hits)
}

func TestAssertionGrantContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := opclient.New(srv.URL)
	_, err := client.AssertionGrant(ctx, "signed.jwt.here", "kid-123", "")
	require.Error(t, err)
}
