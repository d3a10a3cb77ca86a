package usecase

import (
	"fmt"
	"math/rand"
	"time"

	"jpt/internal/config"
	"jpt/internal/domain/synthetic"

	"github.com/google/uuid"
)

type GenerateData struct {
	cfg *config.Config
}

func NewGenerateData(cfg *config.Config) *GenerateData {
	return &GenerateData{cfg: cfg}
}

// Execute builds a fresh generator per call; nothing is shared between requests.
func (uc *GenerateData) Execute() synthetic.Data {
	// Seeded from the global source so concurrent calls never share a seed.
	rnd := rand.New(rand.NewSource(rand.Int63()))

	data := synthetic.Data{
		Service:      uc.cfg.App.Name,
		RandomNumber: rnd.Intn(synthetic.NumberRange),
		RandomString: fmt.Sprintf("data-%d", rnd.Intn(synthetic.SuffixRange)),
		Timestamp:    time.Now(),
		DataType:     uc.cfg.Identity.Key + "-random-data",
		Port:         uc.cfg.HTTP.Port,
	}
	if uc.cfg.Identity.IncludeUUID {
		data.UUID = uuid.New().String()
	}

	return data
}
