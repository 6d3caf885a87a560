package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/pqbot/core/config"
)

func TestBotSettingsHandleUpdatesInOrder(t *testing.T) {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "1:test", LongPollTimeoutSeconds: 50}}
	s := BotSettings(cfg, nil)

	assert.True(t, s.Synchronous)
	assert.Equal(t, "1:test", s.Token)
	assert.NotNil(t, s.OnError)
	assert.Greater(t, s.Client.Timeout, 50*time.Second)
}
