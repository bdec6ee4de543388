package phase

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBuildCanceled signals explicit cancellation of the build. It is always
// propagated unwrapped and is never recorded as a plugin response.
var ErrBuildCanceled = errors.New("build canceled")

// ErrInappropriateBuildStep is returned by a build-step plugin that does not
// apply to the current build method. While iterating build-step candidates it
// is swallowed and the next candidate is tried; in any other phase it is
// fatal.
var ErrInappropriateBuildStep = errors.New("requested build step is not appropriate")

// ErrNoBuildStep is the fatal error of a build-step phase that ended with no
// successful plugin and no recorded response at all.
var ErrNoBuildStep = errors.New("no appropriate build step")

// AutoRebuildCanceledError is raised by a plugin that cancels an automatic
// rebuild. Like ErrBuildCanceled it propagates unwrapped.
type AutoRebuildCanceledError struct {
	PluginKey string
	Msg       string
}

func (e *AutoRebuildCanceledError) Error() string {
	return fmt.Sprintf("plugin %s canceled autorebuild: %s", e.PluginKey, e.Msg)
}

// isCancellation reports whether err is one of the cancellation signals.
func isCancellation(err error) bool {
	var autoCanceled *AutoRebuildCanceledError
	return errors.Is(err, ErrBuildCanceled) || errors.As(err, &autoCanceled)
}

// ConfigError reports a configuration problem: an unresolvable required
// plugin, or an ambiguous or empty "auto" input selection. It is raised
// before, or instead of, running any plugin of the phase.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// Cause names one plugin together with the error it failed with.
type Cause struct {
	Plugin string
	Err    error
}

func (c Cause) String() string {
	return fmt.Sprintf("plugin '%s' raised an error: %v", c.Plugin, c.Err)
}

// PluginFailedError is the fatal outcome of one or more not-allowed-to-fail
// plugin failures. The structured causes are retained; formatting happens
// only here, at the boundary.
type PluginFailedError struct {
	Causes []Cause
}

func (e *PluginFailedError) Error() string {
	if len(e.Causes) == 1 {
		return e.Causes[0].String()
	}
	msgs := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		msgs[i] = c.String()
	}
	return "multiple plugins raised an error: [" + strings.Join(msgs, "; ") + "]"
}

// Unwrap exposes the original errors so callers can match them with
// errors.Is and errors.As.
func (e *PluginFailedError) Unwrap() []error {
	errs := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		errs[i] = c.Err
	}
	return errs
}
