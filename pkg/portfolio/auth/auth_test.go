package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
	"github.com/tendant/portfolio-content/pkg/portfolio/auth"
	"github.com/tendant/portfolio-content/pkg/portfolio/repo/memory"
)

const secret = "test-secret"

func newAuthenticator(t *testing.T, opts ...auth.Option) (*auth.Authenticator, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	a, err := auth.New(repo, secret, opts...)
	require.NoError(t, err)
	return a, repo
}

func signup(t *testing.T, a *auth.Authenticator) *auth.Session {
	t.Helper()
	session, err := a.Signup(context.Background(), auth.SignupRequest{
		Email:    " Admin@Example.com ",
		Password: "s3cret-pass",
		Name:     "Admin",
	})
	require.NoError(t, err)
	return session
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := auth.New(memory.New(), "")
	assert.Error(t, err)
}

func TestSignup(t *testing.T) {
	a, repo := newAuthenticator(t)
	session := signup(t, a)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin@example.com", session.User.Email)

	stored, err := repo.GetUserByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NotEmpty(t, stored.Salt)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := a.Signup(context.Background(), auth.SignupRequest{Email: "ADMIN@example.com", Password: "another-pass", Name: "Other"})
		assert.ErrorIs(t, err, portfolio.ErrConflict)
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name  string
			req   auth.SignupRequest
			field string
		}{
			{"ShortPassword", auth.SignupRequest{Email: "a@b.co", Password: "short", Name: "Ann"}, "password"},
			{"BadEmail", auth.SignupRequest{Email: "nope", Password: "long-enough", Name: "Ann"}, "email"},
			{"MissingName", auth.SignupRequest{Email: "a@b.co", Password: "long-enough"}, "name"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := a.Signup(context.Background(), tt.req)
				var verr *portfolio.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Fields[0].Field)
			})
		}
	})
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	a, _ := newAuthenticator(t)
	signup(t, a)
	ctx := context.Background()

	_, unknownErr := a.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	_, wrongErr := a.Login(ctx, auth.LoginRequest{Email: "admin@example.com", Password: "wrong-pass"})

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.ErrorIs(t, wrongErr, portfolio.ErrUnauthorized)

	session, err := a.Login(ctx, auth.LoginRequest{Email: "ADMIN@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestVerify(t *testing.T) {
	a, repo := newAuthenticator(t)
	session := signup(t, a)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		user, err := a.Verify(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, user.ID)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := a.Verify(ctx, "")
		assert.ErrorIs(t, err, auth.ErrNoToken)
	})

	t.Run("Expired", func(t *testing.T) {
		past, err := auth.New(repo, secret, auth.WithClock(func() time.Time {
			return time.Now().Add(-time.Hour)
		}))
		require.NoError(t, err)
		token, err := past.Issue(session.User)
		require.NoError(t, err)

		_, err = a.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("Tampered", func(t *testing.T) {
		_, err := a.Verify(ctx, session.Token+"x")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
		_, err = a.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := auth.New(repo, "another-secret")
		require.NoError(t, err)
		token, err := other.Issue(session.User)
		require.NoError(t, err)
		_, err = a.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("SubjectGone", func(t *testing.T) {
		token, err := a.Issue(&portfolio.User{ID: "deleted-user", Email: "gone@example.com"})
		require.NoError(t, err)
		_, err = a.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrSubjectGone)
	})
}

func TestMiddleware(t *testing.T) {
	a, _ := newAuthenticator(t)
	session := signup(t, a)

	protected := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(user.Email))
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantReason string
	}{
		{"NoHeader", "", http.StatusUnauthorized, "no_token"},
		{"NotBearer", "Basic abc", http.StatusUnauthorized, "no_token"},
		{"Invalid", "Bearer garbage", http.StatusUnauthorized, "token_invalid"},
		{"Valid", "Bearer " + session.Token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantReason == "" {
				assert.Equal(t, "admin@example.com", rec.Body.String())
				return
			}
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantReason, body["reason"])
		})
	}
}

func TestOptionalMiddleware(t *testing.T) {
	a, _ := newAuthenticator(t)
	session := signup(t, a)

	var seen *portfolio.User
	handler := a.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, session.User.ID, seen.ID)
}
