// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pass provides named graph transformations and a driver that
// applies them in order.
//
// Importing github.com/born-ml/symgrad/gradient registers the "Gradient"
// pass.
//
// Example:
//
//	g := graph.New(y.Entry(0)).
//	    WithAttr(graph.AttrGradYs, []graph.NodeEntry{y.Entry(0)}).
//	    WithAttr(graph.AttrGradYsOutGrad, []graph.NodeEntry{seed.Entry(0)}).
//	    WithAttr(graph.AttrGradXs, []graph.NodeEntry{x.Entry(0)})
//
//	grads, err := pass.Apply(ctx, g, gradient.PassName)
package pass

import (
	"context"
	"log/slog"

	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/pass"
)

// Pass is a named graph transformation.
type Pass = pass.Pass

// Body transforms a graph.
type Body = pass.Body

// Registry holds passes by name.
type Registry = pass.Registry

// Errors returned by Register and Apply.
var (
	ErrUnknownPass       = pass.ErrUnknownPass
	ErrDuplicatePass     = pass.ErrDuplicatePass
	ErrInvalidPass       = pass.ErrInvalidPass
	ErrMissingDependency = pass.ErrMissingDependency
	ErrNilGraph          = pass.ErrNilGraph
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return pass.NewRegistry()
}

// Register adds p to the default registry. It panics on invalid or duplicate
// passes.
func Register(p *Pass) {
	pass.Register(p)
}

// Lookup returns a pass from the default registry.
func Lookup(name string) (*Pass, bool) {
	return pass.Lookup(name)
}

// List returns the passes of the default registry sorted by name.
func List() []*Pass {
	return pass.List()
}

// Apply runs the named passes from the default registry in order.
func Apply(ctx context.Context, src *graph.Graph, names ...string) (*graph.Graph, error) {
	return pass.Apply(ctx, src, names...)
}

// ContextWithLogger returns a context whose passes log to log.
func ContextWithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return pass.ContextWithLogger(ctx, log)
}
