// internal/testutil/templates.go
package testutil

import (
	"sync"
	"testing"

	"github.com/arikst/schoolhub/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var bootOnce sync.Once

// BootTemplates boots the shared template engine once per test binary, the
// same way BuildHandler does at startup. Handler tests that render pages
// call this first; template sets register themselves via package init.
func BootTemplates(t *testing.T) {
	t.Helper()
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if err := eng.Boot(zap.NewNop()); err != nil {
			t.Fatalf("template engine boot failed: %v", err)
		}
		templates.UseEngine(eng, zap.NewNop())
	})
}
