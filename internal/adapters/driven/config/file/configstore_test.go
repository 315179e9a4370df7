package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/storage/memory"
	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/tokenstore"
	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/services"
	"github.com/HerbCaudill/journal-calendar/internal/crypto/secretbox"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

func TestConfigStore_MissingFileIsEmptyConfig(t *testing.T) {
	s, err := NewConfigStore(testPath(t))
	require.NoError(t, err)

	cfg := s.OAuthConfig()
	assert.False(t, cfg.IsConfigured())
}

func TestConfigStore_SaveLoadRoundtrip(t *testing.T) {
	path := testPath(t)

	s, err := NewConfigStore(path)
	require.NoError(t, err)

	want := domain.OAuthConfig{
		ClientID:    "client-id",
		RedirectURI: "http://127.0.0.1:8910/callback",
		Scopes:      []string{"https://www.googleapis.com/auth/calendar.readonly"},
	}
	require.NoError(t, s.Save(want))

	// A fresh store reads the same values back.
	s2, err := NewConfigStore(path)
	require.NoError(t, err)
	got := s2.OAuthConfig()
	assert.Equal(t, want.ClientID, got.ClientID)
	assert.Equal(t, want.RedirectURI, got.RedirectURI)
	assert.Equal(t, want.Scopes, got.Scopes)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	path := testPath(t)

	s, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(domain.OAuthConfig{ClientID: "c"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_MalformedFile(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := NewConfigStore(path)
	assert.Error(t, err)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := testPath(t)

	s, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(domain.OAuthConfig{ClientID: "before"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan domain.OAuthConfig, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Watch(ctx, nil, func(cfg domain.OAuthConfig) {
			select {
			case changed <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before editing the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`client_id = "after"`), 0600))

	select {
	case cfg := <-changed:
		assert.Equal(t, "after", cfg.ClientID)
	case <-time.After(5 * time.Second):
		t.Fatal("config change never observed")
	}

	cancel()
	<-done
	assert.Equal(t, "after", s.OAuthConfig().ClientID)
}

func TestWatch_DrivesSessionReconfigure(t *testing.T) {
	path := testPath(t)

	s, err := NewConfigStore(path)
	require.NoError(t, err)

	kv := memory.NewKVStore()
	session := services.NewSession(
		s.OAuthConfig(),
		tokenstore.New(kv, secretbox.NewKeySource(kv), nil),
		nil, nil, memory.NewKVStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, session.Initialize(ctx))
	require.Equal(t, domain.StateUnconfigured, session.State())

	reconfigured := make(chan struct{}, 1)
	go func() {
		_ = s.Watch(ctx, nil, func(cfg domain.OAuthConfig) {
			if err := session.Reconfigure(ctx, cfg); err != nil {
				t.Error(err)
				return
			}
			select {
			case reconfigured <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before editing the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`client_id = "from-watcher"`), 0600))

	select {
	case <-reconfigured:
	case <-time.After(5 * time.Second):
		t.Fatal("config change never reached the session")
	}

	// A config edit is the only path out of unconfigured.
	assert.Equal(t, domain.StateUnauthenticated, session.State())
}
