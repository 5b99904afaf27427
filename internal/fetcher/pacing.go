package fetcher

import (
	"math/rand"
	"time"

	"github.com/newsprowl/newsprowl/internal/config"
)

// Pacer inserts jittered waits between requests. The wait is applied before
// every fetch of the given kind, whether or not the previous one succeeded.
type Pacer struct {
	rng *rand.Rand
}

// NewPacer creates a pacer with its own random source.
func NewPacer() *Pacer {
	return &Pacer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sleep blocks for a random duration in [min, max].
func (p *Pacer) Sleep(min, max time.Duration) {
	time.Sleep(p.Jitter(min, max))
}

// Jitter returns a random duration in [min, max].
func (p *Pacer) Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(p.rng.Int63n(int64(max-min)+1))
}

// PageGap waits the configured gap before a result-page fetch.
func (p *Pacer) PageGap(cfg *config.CrawlConfig) {
	p.Sleep(cfg.PageDelayMin, cfg.PageDelayMax)
}

// ArticleGap waits the configured gap before an article fetch.
func (p *Pacer) ArticleGap(cfg *config.CrawlConfig) {
	p.Sleep(cfg.ArticleDelayMin, cfg.ArticleDelayMax)
}
