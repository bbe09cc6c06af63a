package workerpool

import (
	"fmt"
	"sync"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

// sharedName is the pool name the process-wide pool reports in logs and metrics.
const sharedName = "shared"

var (
	sharedMu   sync.Mutex
	sharedPool *Pool
)

// Shared returns the process-wide pool, creating it with one worker per CPU
// on first use. After Shutdown, the next call creates a fresh pool.
func Shared() *Pool {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedPool == nil {
		cfg := DefaultConfig()
		cfg.Name = sharedName
		p, err := NewWithConfig(cfg)
		if err != nil {
			// DefaultConfig is always valid.
			panic(err)
		}
		sharedPool = p
	}
	return sharedPool
}

// InitShared creates the process-wide pool from cfg. It must be called before
// the first use of Shared or the package-level helpers; it fails if the pool
// already exists.
func InitShared(cfg Config) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedPool != nil {
		return tperrors.NewOperationError("workerpool", "InitShared",
			fmt.Errorf("shared pool %q already exists", sharedPool.Name()))
	}
	if cfg.Name == "" {
		cfg.Name = sharedName
	}
	p, err := NewWithConfig(cfg)
	if err != nil {
		return err
	}
	sharedPool = p
	return nil
}

// Post queues r on the shared pool.
func Post(r Runner) error {
	return Shared().Post(r)
}

// PostFunc queues fn on the shared pool.
func PostFunc(fn func()) error {
	return Shared().PostFunc(fn)
}

// ActiveServices reports the number of busy workers in the shared pool. It
// does not create the pool.
func ActiveServices() int {
	sharedMu.Lock()
	p := sharedPool
	sharedMu.Unlock()

	if p == nil {
		return 0
	}
	return p.ActiveServices()
}

// Shutdown stops the shared pool, if it was ever created, and waits for its
// workers to exit. Call it before the process exits.
func Shutdown() {
	sharedMu.Lock()
	p := sharedPool
	sharedPool = nil
	sharedMu.Unlock()

	if p != nil {
		p.Stop()
	}
}
