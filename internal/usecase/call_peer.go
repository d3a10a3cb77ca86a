package usecase

import (
	"context"
	"time"

	"jpt/internal/config"
	"jpt/internal/domain/status"
)

type PeerClient interface {
	GetJSON(ctx context.Context, url string) (map[string]any, error)
}

type CallPeer struct {
	cfg    *config.Config
	client PeerClient
}

func NewCallPeer(cfg *config.Config, client PeerClient) *CallPeer {
	return &CallPeer{
		cfg:    cfg,
		client: client,
	}
}

// Execute queries the peer's /data endpoint. Exactly one of the returned
// values is non-nil.
func (uc *CallPeer) Execute(ctx context.Context) (*status.CallResult, *status.CallFailure) {
	url := uc.cfg.DataURL()

	peerData, err := uc.client.GetJSON(ctx, url)
	if err != nil {
		peerCalls.WithLabelValues("failure").Inc()
		return nil, &status.CallFailure{
			Service:      uc.cfg.App.Name,
			Error:        "Failed to call " + uc.cfg.Identity.PeerName,
			Message:      err.Error(),
			Timestamp:    time.Now(),
			AttemptedURL: url,
			Port:         uc.cfg.HTTP.Port,
		}
	}

	peerCalls.WithLabelValues("success").Inc()
	return &status.CallResult{
		Service:      uc.cfg.App.Name,
		Message:      "Successfully called " + uc.cfg.Identity.PeerName,
		Timestamp:    time.Now(),
		PeerResponse: peerData,
		CalledURL:    url,
		Port:         uc.cfg.HTTP.Port,
	}, nil
}
