package runner

import (
	"io"
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithIO sets where choices are read from and pages are written to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.handler = NewTextHandler(in, out)
	}
}

// WithRenderer configures the content renderer (e.g. glamour for terminals).
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

// WithStartNode begins reading at nodeID instead of the story's start.
func WithStartNode(nodeID string) Option {
	return func(r *Runner) {
		r.startNode = nodeID
	}
}

// WithExpand controls whether unwritten choices are sent to the producer (default true).
func WithExpand(enabled bool) Option {
	return func(r *Runner) {
		r.expand = enabled
	}
}
