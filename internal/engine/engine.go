package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dyluth/spoor/pkg/replay"
	"github.com/google/uuid"
)

// Engine feeds a replay's event stream to registered analysis modules.
//
// Execution order is fully determined by registration order: start hooks,
// then every event to every interested module, then end hooks. A module that
// produces context data for others must be registered before them.
type Engine struct {
	modules []Module
	quiet   bool
}

// New creates an engine with modules registered in the given order.
func New(modules ...Module) *Engine {
	e := &Engine{}
	for _, m := range modules {
		e.Register(m)
	}
	return e
}

// Register appends a module. Nil modules are ignored.
func (e *Engine) Register(m Module) {
	if m == nil {
		return
	}
	e.modules = append(e.modules, m)
}

// SetQuiet disables the structured log lines.
func (e *Engine) SetQuiet(quiet bool) {
	e.quiet = quiet
}

// Modules returns the registered module names in registration order.
func (e *Engine) Modules() []string {
	names := make([]string, len(e.modules))
	for i, m := range e.modules {
		names[i] = m.Name()
	}
	return names
}

// Run is shorthand for New(modules...).Run(rc).
func Run(rc *replay.Context, modules ...Module) *Report {
	return New(modules...).Run(rc)
}

// Run dispatches the whole event stream once, front to back.
// It never aborts: hook errors and panics are collected on the returned report.
func (e *Engine) Run(rc *replay.Context) *Report {
	report := &Report{
		ID:      uuid.New().String(),
		Skipped: make(map[string]error),
	}
	startTime := time.Now()

	e.logEvent(report, "run_started", map[string]interface{}{
		"replay":  rc.Name,
		"events":  rc.Len(),
		"modules": e.Modules(),
	})

	active := make([]bool, len(e.modules))
	for i, m := range e.modules {
		active[i] = true
		starter, ok := m.(Starter)
		if !ok {
			continue
		}
		err := e.invoke(func() error { return starter.Start(rc) })
		if err == nil {
			continue
		}
		if errors.Is(err, ErrMissingInput) {
			active[i] = false
			report.Skipped[m.Name()] = err
			e.logEvent(report, "module_skipped", map[string]interface{}{
				"module": m.Name(),
				"reason": err.Error(),
			})
			continue
		}
		e.fail(report, &ModuleFailure{Module: m.Name(), Hook: HookStart, Seq: -1, Err: err})
	}

	routes := e.route(active)

	rc.Each(func(ev replay.Event) {
		report.Events++
		for _, i := range routes[ev.Kind] {
			h := e.modules[i].(Handler)
			// Each handler gets its own copy so none can alter what the next one sees.
			own := ev.Clone()
			if err := e.invoke(func() error { return h.Handle(rc, own) }); err != nil {
				e.fail(report, &ModuleFailure{
					Module: e.modules[i].Name(),
					Hook:   HookEvent,
					Seq:    ev.Seq,
					Kind:   ev.Kind,
					Err:    err,
				})
			}
		}
	})

	for i, m := range e.modules {
		if !active[i] {
			continue
		}
		finisher, ok := m.(Finisher)
		if !ok {
			continue
		}
		if err := e.invoke(func() error { return finisher.End(rc) }); err != nil {
			e.fail(report, &ModuleFailure{Module: m.Name(), Hook: HookEnd, Seq: -1, Err: err})
		}
	}

	e.logEvent(report, "run_completed", map[string]interface{}{
		"replay":     rc.Name,
		"events":     report.Events,
		"failures":   len(report.Failures),
		"skipped":    len(report.Skipped),
		"latency_ms": time.Since(startTime).Milliseconds(),
	})

	return report
}

// route builds the kind -> module index table for active handlers.
// Indices within each kind stay in registration order.
func (e *Engine) route(active []bool) map[replay.Kind][]int {
	routes := make(map[replay.Kind][]int)
	for i, m := range e.modules {
		if !active[i] {
			continue
		}
		h, ok := m.(Handler)
		if !ok {
			continue
		}
		seen := make(map[replay.Kind]bool)
		for _, k := range h.Kinds() {
			if seen[k] {
				continue
			}
			seen[k] = true
			routes[k] = append(routes[k], i)
		}
	}
	return routes
}

// invoke runs one hook and converts a panic into an error.
func (e *Engine) invoke(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

func (e *Engine) fail(report *Report, f *ModuleFailure) {
	report.Failures = append(report.Failures, f)
	data := map[string]interface{}{
		"module": f.Module,
		"hook":   string(f.Hook),
		"error":  f.Err.Error(),
	}
	if f.Hook == HookEvent {
		data["seq"] = f.Seq
		data["kind"] = string(f.Kind)
	}
	e.logEvent(report, "module_failed", data)
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(report *Report, eventType string, data map[string]interface{}) {
	if e.quiet {
		return
	}
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	if eventType == "module_failed" {
		data["level"] = "warn"
	}
	data["component"] = "engine"
	data["event_type"] = eventType
	data["run_id"] = report.ID

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
