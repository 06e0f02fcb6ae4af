// Package ui provides the main entry point for the UI.
package ui

import (
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/client"
	"github.com/palemoky/ludo-rooms/internal/ui/model"
)

// NewOnlineModel creates a new OnlineModel connected to serverURL.
func NewOnlineModel(serverURL string, logger *zap.Logger) *model.OnlineModel {
	return model.NewOnlineModel(client.NewClient(serverURL, logger), logger)
}
