package screen

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// Manager owns the live screens, one per session and entity. Screens are
// created lazily on first access and dropped when the session ends.
type Manager struct {
	client   *upstream.Client
	configs  map[string]Config
	toastTTL time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	screens map[string]*Screen
}

// NewManager builds a manager over the given screen registry.
func NewManager(client *upstream.Client, configs []Config, toastTTL time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	byEntity := make(map[string]Config, len(configs))
	for _, cfg := range configs {
		byEntity[cfg.Entity] = cfg
	}
	return &Manager{
		client:   client,
		configs:  byEntity,
		toastTTL: toastTTL,
		logger:   logger,
		screens:  make(map[string]*Screen),
	}
}

// Config looks up the registry entry for an entity.
func (m *Manager) Config(entity string) (Config, error) {
	cfg, ok := m.configs[entity]
	if !ok {
		return Config{}, appErrors.Clone(appErrors.ErrNotFound, "unknown screen: "+entity)
	}
	return cfg, nil
}

// Screen returns the session's screen for an entity, creating it on first
// use. The screen's gateway caller carries the session's upstream token.
func (m *Manager) Screen(sess *models.Session, entity string) (*Screen, error) {
	cfg, err := m.Config(entity)
	if err != nil {
		return nil, err
	}

	key := sess.ID + "|" + entity

	m.mu.Lock()
	defer m.mu.Unlock()

	if scr, ok := m.screens[key]; ok {
		return scr, nil
	}
	scr := New(cfg, m.client.WithToken(sess.Token), m.toastTTL, m.logger)
	m.screens[key] = scr
	return scr, nil
}

// DropSession discards every screen belonging to a session, typically at
// logout.
func (m *Manager) DropSession(sessionID string) {
	prefix := sessionID + "|"

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.screens {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(m.screens, key)
		}
	}
}
