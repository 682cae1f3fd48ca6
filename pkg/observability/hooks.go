// Package observability provides hooks for timing and logging the stages of
// a tree command.
//
// Libraries stay free of any logging or metrics backend: the command calls
// the registered hooks around each stage and main decides what they do.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTreeHooks(&myTreeHooks{})
//	    // ... run application
//	}
//
// Then emit events around each stage:
//
//	observability.Tree().OnLoadStart(ctx, path)
//	dists, err := installed.Load(path, nil)
//	observability.Tree().OnLoadComplete(ctx, path, len(dists), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// TreeHooks receives events from the load, build and render stages.
type TreeHooks interface {
	// OnLoadStart is called before an inventory is read.
	OnLoadStart(ctx context.Context, source string)

	// OnLoadComplete reports the number of packages read from source.
	OnLoadComplete(ctx context.Context, source string, packages int, duration time.Duration, err error)

	// OnBuildComplete reports the size of the requirement graph.
	OnBuildComplete(ctx context.Context, packages, edges, diagnostics int, duration time.Duration)

	// OnRenderComplete reports the number of lines rendered.
	OnRenderComplete(ctx context.Context, lines int, duration time.Duration)
}

// NoopTreeHooks is a no-op implementation of TreeHooks.
type NoopTreeHooks struct{}

func (NoopTreeHooks) OnLoadStart(context.Context, string)                               {}
func (NoopTreeHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopTreeHooks) OnBuildComplete(context.Context, int, int, int, time.Duration)     {}
func (NoopTreeHooks) OnRenderComplete(context.Context, int, time.Duration)              {}

var (
	treeHooks TreeHooks = NoopTreeHooks{}
	hooksMu   sync.RWMutex
)

// SetTreeHooks registers custom tree hooks. A nil h is ignored.
func SetTreeHooks(h TreeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		treeHooks = h
	}
}

// Tree returns the registered tree hooks.
func Tree() TreeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return treeHooks
}

// Reset restores the no-op hooks. This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	treeHooks = NoopTreeHooks{}
}
