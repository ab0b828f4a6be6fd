package audit

import (
	"sync"
	"time"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
	"github.com/ruchit2005/Pran-Protocol/config"
)

// FeedbackTracker records audit verdicts per intent and widens topK
// after a run of invalid result sets, on the theory that a persistently
// failing domain needs a larger candidate pool, not a different query.
type FeedbackTracker struct {
	mu         sync.RWMutex
	cfg        config.FeedbackConfig
	history    map[string][]verdictRecord
	lastAdjust map[string]time.Time
	maxPerKey  int
}

type verdictRecord struct {
	timestamp time.Time
	valid     bool
}

func NewFeedbackTracker(cfg *config.FeedbackConfig) *FeedbackTracker {
	t := &FeedbackTracker{
		history:    make(map[string][]verdictRecord),
		lastAdjust: make(map[string]time.Time),
		maxPerKey:  100,
	}
	if cfg != nil {
		t.cfg = *cfg
		if cfg.Window > 0 {
			t.maxPerKey = cfg.Window * 5
		}
	}
	return t
}

// Record stores one verdict for the given intent.
func (t *FeedbackTracker) Record(intent string, valid bool) {
	if intent == "" {
		intent = "_global"
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	history := append(t.history[intent], verdictRecord{timestamp: time.Now(), valid: valid})
	if len(history) > t.maxPerKey {
		history = history[len(history)-t.maxPerKey:]
	}
	t.history[intent] = history
}

// AdjustTopK returns a widened topK for the intent when the recent
// window shows enough invalid verdicts and the cooldown has passed.
func (t *FeedbackTracker) AdjustTopK(intent string, topK int) int {
	if intent == "" {
		intent = "_global"
	}
	window := t.cfg.Window
	if window <= 0 {
		window = 5
	}
	invalidMin := t.cfg.InvalidMin
	if invalidMin <= 0 {
		invalidMin = 3
	}
	step := t.cfg.TopKStep
	if step <= 0 {
		step = 2
	}
	maxK := t.cfg.TopKMax
	if maxK <= 0 {
		maxK = 20
	}
	cooldown := time.Duration(t.cfg.CooldownSec) * time.Second

	t.mu.RLock()
	history := t.history[intent]
	if len(history) > window {
		history = history[len(history)-window:]
	}
	invalid := 0
	for _, r := range history {
		if !r.valid {
			invalid++
		}
	}
	last := t.lastAdjust[intent]
	t.mu.RUnlock()

	if invalid < invalidMin {
		return topK
	}
	if cooldown > 0 && !last.IsZero() && time.Since(last) < cooldown {
		return topK
	}

	widened := topK + step
	if widened > maxK {
		widened = maxK
	}
	if widened != topK {
		t.mu.Lock()
		t.lastAdjust[intent] = time.Now()
		t.mu.Unlock()
		logger.Infof("audit feedback: widened topK %d -> %d for %s after %d invalid verdicts", topK, widened, intent, invalid)
	}
	return widened
}
