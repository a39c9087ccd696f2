// Package metrics holds the instrumentation primitives shared by the pipe
// package and its backends. Backends (Prometheus, tests) implement them; the
// core packages never import a backend directly.
package metrics

// Timer measures one operation. Call ObserveDuration when it completes:
//
//	defer m.CommandDuration("pipe.Request").ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// TimerFunc adapts a plain function to Timer.
type TimerFunc func()

func (f TimerFunc) ObserveDuration() { f() }
