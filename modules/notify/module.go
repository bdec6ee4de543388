// Package notify provides the notify exit plugin. It emits the final state
// of the build (image, failure flag, per-plugin errors and durations) to a
// socket.io endpoint, optionally waiting for an acknowledgement event.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	w *workflow.Context

	url                string
	namespace          string
	event              string
	ackEvent           string
	timeout            string
	insecureSkipVerify bool
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

func newPlugin(_ *container.Engine, w *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{w: w, event: "build_state", timeout: "10s"}
	if v, ok := args["url"].(string); ok {
		p.url = v
	}
	if p.url == "" {
		return nil, fmt.Errorf("url argument is required")
	}
	if v, ok := args["namespace"].(string); ok {
		p.namespace = v
	}
	if v, ok := args["event"].(string); ok && v != "" {
		p.event = v
	}
	if v, ok := args["ack_event"].(string); ok {
		p.ackEvent = v
	}
	if v, ok := args["timeout"].(string); ok && v != "" {
		p.timeout = v
	}
	if v, ok := args["insecure_skip_verify"].(bool); ok {
		p.insecureSkipVerify = v
	}
	return p, nil
}

// payload summarizes the build for the receiving side.
func (p *plugin) payload() map[string]any {
	durations := make(map[string]any, len(p.w.PluginDurations))
	for key, d := range p.w.PluginDurations {
		durations[key] = d.Seconds()
	}
	errs := make(map[string]any, len(p.w.PluginErrors))
	for key, msg := range p.w.PluginErrors {
		errs[key] = msg
	}
	return map[string]any{
		"image":         p.w.Image,
		"image_id":      p.w.ImageID,
		"failed":        p.w.PluginFailed,
		"plugin_errors": errs,
		"durations":     durations,
	}
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", "notify", "url", p.url, "event", p.event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(p.timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "timeout", p.timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if p.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Connected, emitting build state.", "namespace", p.namespace, "sid", io.Id())
		io.Emit(p.event, p.payload())
		if p.ackEvent == "" {
			done <- opResult{value: p.payload()}
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- opResult{err: err}
			return
		}
		done <- opResult{err: fmt.Errorf("connect error: %v", errs[0])}
	})

	if p.ackEvent != "" {
		io.On(types.EventName(p.ackEvent), func(data ...any) {
			var ack any
			if len(data) > 0 {
				ack = data[0]
			}
			done <- opResult{value: ack}
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", p.ackEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "notify",
		Category: registry.Exit,
		Params:   []string{"url", "namespace", "event", "ack_event", "timeout", "insecure_skip_verify"},
		New:      newPlugin,
	})
}
