package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPluginConfigServiceName(t *testing.T) {
	cfg := DefaultPluginConfig()
	assert.Equal(t, "aqualink", cfg.ServiceName)
	assert.False(t, cfg.EnableSQLParams)
}

func TestNewOTELPluginFallsBackToServiceName(t *testing.T) {
	p := NewOTELPlugin(PluginConfig{})
	assert.Equal(t, "aqualink", p.config.ServiceName)
}
