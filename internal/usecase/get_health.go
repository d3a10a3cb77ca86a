package usecase

import (
	"time"

	"jpt/internal/config"
	"jpt/internal/domain/status"
)

type GetHealth struct {
	cfg *config.Config
}

func NewGetHealth(cfg *config.Config) *GetHealth {
	return &GetHealth{cfg: cfg}
}

// Execute never touches the peer.
func (uc *GetHealth) Execute() status.Health {
	return status.Health{
		Service:   uc.cfg.App.Name,
		Message:   "Hello from " + uc.cfg.App.Name + "!",
		Timestamp: time.Now(),
		Port:      uc.cfg.HTTP.Port,
		PeerURL:   uc.cfg.Peer.URL,
	}
}
