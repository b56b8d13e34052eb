// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads graph descriptions (YAML or JSON) into graphs that
// carry a gradient request.
//
// Example:
//
//	import (
//	    "github.com/born-ml/symgrad/gradient"
//	    "github.com/born-ml/symgrad/loader"
//	    "github.com/born-ml/symgrad/pass"
//	)
//
//	g, err := loader.LoadFile("model.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	grads, err := pass.Apply(ctx, g, gradient.PassName)
package loader

import (
	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/loader"
	"github.com/born-ml/symgrad/internal/op"
)

// Format is the encoding of a graph description file.
type Format = loader.Format

// Supported formats.
const (
	FormatUnknown Format = loader.FormatUnknown
	FormatYAML    Format = loader.FormatYAML
	FormatJSON    Format = loader.FormatJSON
)

// Document is a decoded graph description.
type Document = loader.Document

// Loader builds graphs from descriptions.
type Loader = loader.Loader

// Errors returned while loading.
var (
	ErrUnsupportedFormat = loader.ErrUnsupportedFormat
	ErrInvalidDocument   = loader.ErrInvalidDocument
	ErrUnknownOp         = loader.ErrUnknownOp
	ErrDuplicateNode     = loader.ErrDuplicateNode
	ErrUndefinedNode     = loader.ErrUndefinedNode
	ErrBadReference      = loader.ErrBadReference
	ErrInputCount        = loader.ErrInputCount
)

// New creates a loader resolving op names in registry (nil means the
// builtin registry).
func New(registry *op.Registry) *Loader {
	return loader.New(registry)
}

// LoadFile reads a description with the builtin registry.
func LoadFile(path string) (*graph.Graph, error) {
	return loader.LoadFile(path)
}

// DetectFormat determines the format from the file extension.
func DetectFormat(path string) Format {
	return loader.DetectFormat(path)
}
