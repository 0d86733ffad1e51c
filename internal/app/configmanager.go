package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/nexchakra/showcase/internal/domain"
)

const configCacheTTL = 30 * time.Second

// ConfigManager reads runtime settings from sys_config with a short cache so
// hot request paths do not hit the database per lookup.
type ConfigManager struct {
	app *Application

	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, cache: make(map[string]string)}
}

func (m *ConfigManager) load() map[string]string {
	m.mu.RLock()
	if time.Since(m.loadedAt) < configCacheTTL {
		cached := m.cache
		m.mu.RUnlock()
		return cached
	}
	m.mu.RUnlock()

	var rows []domain.SysConfig
	if err := m.app.DB().Find(&rows).Error; err != nil {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.cache
	}
	fresh := make(map[string]string, len(rows))
	for _, row := range rows {
		fresh[row.Type+"."+row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache = fresh
	m.loadedAt = time.Now()
	m.mu.Unlock()
	return fresh
}

// Invalidate drops the cache so the next read reloads from the database
func (m *ConfigManager) Invalidate() {
	m.mu.Lock()
	m.loadedAt = time.Time{}
	m.mu.Unlock()
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.load()[category+"."+name]
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.load()[category+"."+name])
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.load()[category+"."+name])
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.load()[category+"."+name])
}
