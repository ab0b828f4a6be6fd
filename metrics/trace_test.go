package metrics

import (
	"sync"
	"testing"

	"github.com/ruchit2005/Pran-Protocol/common/logger"
)

func init() { logger.Disable() }

func TestRequestTrace_ConcurrentSetters(t *testing.T) {
	tr := NewRequestTrace("rid", "q")

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddFallback("hybrid")
			tr.SetAuditVerdict(i%2 == 0)
			tr.SetRewrite("changed", true)
		}()
	}
	wg.Wait()

	if len(tr.FallbacksTried) != writers {
		t.Fatalf("fallbacks recorded: %d, want %d", len(tr.FallbacksTried), writers)
	}
	if tr.AuditValid == nil {
		t.Fatal("audit verdict not recorded")
	}
	if !tr.Rewritten || tr.RewriteDecision != "changed" {
		t.Fatalf("rewrite not recorded: %v %q", tr.Rewritten, tr.RewriteDecision)
	}
	tr.Log()
}
