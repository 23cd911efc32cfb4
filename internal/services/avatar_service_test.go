package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/models"
	"github.com/yukikurage/workspace-api/internal/repository"
	"gorm.io/gorm"
)

type avatarTestEnv struct {
	db      *gorm.DB
	server  *httptest.Server
	hits    *atomic.Int32
	service *AvatarService
}

func setupAvatarTest(t *testing.T, handler http.HandlerFunc) avatarTestEnv {
	t.Helper()

	db := openTestDB(t)
	hits := &atomic.Int32{}
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	service := NewAvatarService(repository.NewUserRepository(db), AvatarServiceConfig{
		AllowedHosts: []string{"127.0.0.1"},
		Client:       server.Client(),
	}, nil)

	return avatarTestEnv{db: db, server: server, hits: hits, service: service}
}

func (e avatarTestEnv) createUser(t *testing.T, id, avatarURL string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{ID: id, Subject: "sub-" + id, AvatarURL: avatarURL}).Error)
}

func TestAvatarService_Relays(t *testing.T) {
	png := []byte("\x89PNG fake")
	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})
	env.createUser(t, "alice", env.server.URL+"/a.png")

	avatar, err := env.service.Fetch(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "image/png", avatar.ContentType)
	assert.Equal(t, png, avatar.Body)
}

func TestAvatarService_NotFound(t *testing.T) {
	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {})
	env.createUser(t, "noavatar", "")

	_, err := env.service.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
	_, err = env.service.Fetch(context.Background(), "noavatar")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}

func TestAvatarService_RefusesDisallowedHostsWithoutFetching(t *testing.T) {
	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("img"))
	})

	u, err := url.Parse(env.server.URL)
	require.NoError(t, err)
	plain := "http://" + u.Host + "/a.png"

	cases := map[string]string{
		"other host":   "https://evil.example.com/a.png",
		"suffix trick": "https://127.0.0.1.evil.example.com/a.png",
		"plain http":   plain,
		"data url":     "data:image/png;base64,AAAA",
		"relative":     "/a.png",
	}
	for name, avatarURL := range cases {
		t.Run(name, func(t *testing.T) {
			id := "user-" + name
			env.createUser(t, id, avatarURL)

			_, err := env.service.Fetch(context.Background(), id)
			assert.ErrorIs(t, err, ErrAvatarHostNotAllowed)
		})
	}
	assert.Zero(t, env.hits.Load())
}

func TestAvatarService_RefusesRedirectToDisallowedHost(t *testing.T) {
	offListHits := &atomic.Int32{}
	offList := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offListHits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("internal"))
	}))
	t.Cleanup(offList.Close)

	u, err := url.Parse(offList.URL)
	require.NoError(t, err)
	target := "http://localhost:" + u.Port() + "/secret"

	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
	env.createUser(t, "alice", env.server.URL+"/a.png")

	avatar, err := env.service.Fetch(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrAvatarHostNotAllowed)
	assert.Nil(t, avatar)
	assert.EqualValues(t, 1, env.hits.Load())
	assert.Zero(t, offListHits.Load())
}

func TestAvatarService_FollowsRedirectWithinAllowedHosts(t *testing.T) {
	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a.png" {
			http.Redirect(w, r, "/b.png", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("img"))
	})
	env.createUser(t, "alice", env.server.URL+"/a.png")

	avatar, err := env.service.Fetch(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), avatar.Body)
	assert.EqualValues(t, 2, env.hits.Load())
}

func TestAvatarService_RedirectLoop(t *testing.T) {
	env := setupAvatarTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/a.png", http.StatusFound)
	})
	env.createUser(t, "alice", env.server.URL+"/a.png")

	_, err := env.service.Fetch(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrAvatarUpstream)
	assert.EqualValues(t, constants.AvatarMaxRedirects, env.hits.Load())
}

func TestAvatarService_UpstreamFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"not an image": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>"))
		},
		"too large": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(bytes.Repeat([]byte{0}, constants.AvatarMaxBytes+1))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			env := setupAvatarTest(t, handler)
			env.createUser(t, "alice", env.server.URL+"/a.png")

			_, err := env.service.Fetch(context.Background(), "alice")
			assert.ErrorIs(t, err, ErrAvatarUpstream)
		})
	}
}

func TestHostAllowed(t *testing.T) {
	allowed := []string{"googleusercontent.com"}

	assert.True(t, hostAllowed(allowed, "googleusercontent.com"))
	assert.True(t, hostAllowed(allowed, "lh3.googleusercontent.com"))
	assert.False(t, hostAllowed(allowed, "evilgoogleusercontent.com"))
	assert.False(t, hostAllowed(allowed, "googleusercontent.com.evil.io"))
}
