package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Document is the decoded form of a graph description.
type Document struct {
	Nodes    []NodeSpec   `yaml:"nodes" validate:"required,min=1,dive"`
	Gradient GradientSpec `yaml:"gradient"`
}

// NodeSpec declares one node. An empty Op declares a variable.
type NodeSpec struct {
	Name        string            `yaml:"name" validate:"required,nodename"`
	Op          string            `yaml:"op"`
	Inputs      []string          `yaml:"inputs" validate:"dive,entryref"`
	ControlDeps []string          `yaml:"control_deps" validate:"dive,nodename"`
	Attrs       map[string]string `yaml:"attrs"`
}

// GradientSpec is the gradient request of a document.
type GradientSpec struct {
	Ys        []string  `yaml:"ys" validate:"required,min=1,dive,entryref"`
	YsOutGrad []string  `yaml:"ys_out_grad" validate:"required,min=1,dive,entryref"`
	Xs        []string  `yaml:"xs" validate:"required,min=1,dive,entryref"`
	Aggregate string    `yaml:"aggregate" validate:"omitempty,oneof=default pairwise"`
	Clip      *ClipSpec `yaml:"clip"`
	MirrorOps []string  `yaml:"mirror_ops" validate:"dive,required"`
}

// ClipSpec bounds every aggregated gradient to [Min, Max].
type ClipSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtfield=Min"`
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./-]*$`)
	entryPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_./-]*(:[0-9]+)?$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nodename", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("entryref", func(fl validator.FieldLevel) bool {
		return entryPattern.MatchString(fl.Field().String())
	})
	return v
}

// entryRef is a parsed "name" or "name:index" reference.
type entryRef struct {
	name  string
	index int
}

func parseEntryRef(s string) (entryRef, error) {
	name, idx, found := strings.Cut(s, ":")
	if !found {
		return entryRef{name: s}, nil
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return entryRef{}, fmt.Errorf("%w: %q", ErrBadReference, s)
	}
	return entryRef{name: name, index: i}, nil
}
