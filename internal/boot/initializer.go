// Package boot sequences subsystem construction at startup. Stages run
// strictly in dependency order, and each stage waits for the runtime
// dependencies it needs with a cooperative frame-tick poll instead of
// fixed delays.
package boot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrTimeout is returned when a dependency never became ready within the
// allotted window.
var ErrTimeout = errors.New("dependency wait timed out")

// defaultFrameInterval approximates one rendered frame at display rate.
const defaultFrameInterval = 16 * time.Millisecond

// Registry tracks named runtime dependencies published by subsystems once
// they are ready. It lives for the duration of startup.
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewRegistry creates an empty dependency registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[string]interface{})}
}

// Publish records a named dependency as ready. Later publishes for the
// same name replace the value.
func (r *Registry) Publish(name string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = value
}

// Lookup returns a published dependency, if present.
func (r *Registry) Lookup(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	return v, ok
}

// wait is the memoized outcome of one named WaitFor.
type wait struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Initializer resolves named dependencies and runs startup stages in
// order. Waits poll once per frame interval; the first poll happens
// immediately.
type Initializer struct {
	registry      *Registry
	frameInterval time.Duration

	mu    sync.Mutex
	waits map[string]*wait

	stages []Stage
}

// Stage is one named startup step. Optional stages may fail without
// aborting the sequence; required stage failures are terminal.
type Stage struct {
	Name     string
	Optional bool
	Run      func(reg *Registry) error
}

// NewInitializer creates an initializer polling at the given frame
// interval. A non-positive interval selects the display-rate default.
func NewInitializer(registry *Registry, frameInterval time.Duration) *Initializer {
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	return &Initializer{
		registry:      registry,
		frameInterval: frameInterval,
		waits:         make(map[string]*wait),
	}
}

// Registry returns the dependency registry.
func (in *Initializer) Registry() *Registry {
	return in.registry
}

// WaitFor blocks until poll returns a non-nil value, checking once per
// frame tick, and fails with ErrTimeout once the timeout elapses. Repeated
// calls for the same name return the memoized outcome without re-polling.
func (in *Initializer) WaitFor(name string, poll func() interface{}, timeout time.Duration) (interface{}, error) {
	in.mu.Lock()
	w, ok := in.waits[name]
	if ok {
		in.mu.Unlock()
		<-w.done
		return w.value, w.err
	}
	w = &wait{done: make(chan struct{})}
	in.waits[name] = w
	in.mu.Unlock()

	w.value, w.err = in.poll(name, poll, timeout)
	close(w.done)
	return w.value, w.err
}

// poll runs the frame-tick wait loop for a single dependency.
func (in *Initializer) poll(name string, poll func() interface{}, timeout time.Duration) (interface{}, error) {
	if v := poll(); v != nil {
		return v, nil
	}

	ticker := time.NewTicker(in.frameInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			if v := poll(); v != nil {
				return v, nil
			}
		case <-deadline.C:
			return nil, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
	}
}

// Resolve waits for a dependency published in the registry under the
// given name.
func (in *Initializer) Resolve(name string, timeout time.Duration) (interface{}, error) {
	return in.WaitFor(name, func() interface{} {
		v, ok := in.registry.Lookup(name)
		if !ok {
			return nil
		}
		return v
	}, timeout)
}

// WaitForAll resolves every named poll and returns their values. It fails
// as soon as any entry times out.
func (in *Initializer) WaitForAll(polls map[string]func() interface{}, timeout time.Duration) (map[string]interface{}, error) {
	type outcome struct {
		name  string
		value interface{}
		err   error
	}

	results := make(chan outcome, len(polls))
	for name, poll := range polls {
		go func(name string, poll func() interface{}) {
			v, err := in.WaitFor(name, poll, timeout)
			results <- outcome{name: name, value: v, err: err}
		}(name, poll)
	}

	values := make(map[string]interface{}, len(polls))
	for range polls {
		res := <-results
		if res.err != nil {
			return nil, res.err
		}
		values[res.name] = res.value
	}
	return values, nil
}

// AddStage appends a stage to the startup sequence.
func (in *Initializer) AddStage(stage Stage) {
	in.stages = append(in.stages, stage)
}

// Initialize runs the stages strictly in order. Each stage's published
// dependencies are visible before the next stage starts. A required
// stage's failure halts the sequence; an optional stage's failure is
// logged and skipped.
func (in *Initializer) Initialize() error {
	for _, stage := range in.stages {
		log.WithField("prefix", "boot").Infof("stage %q starting", stage.Name)
		if err := stage.Run(in.registry); err != nil {
			if stage.Optional {
				log.WithField("prefix", "boot").Warnf("optional stage %q failed, continuing: %v", stage.Name, err)
				continue
			}
			log.WithField("prefix", "boot").Errorf("stage %q failed: %v", stage.Name, err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		log.WithField("prefix", "boot").Infof("stage %q complete", stage.Name)
	}
	return nil
}
