package gradient

import (
	"context"

	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/pass"
)

// PassName is the name the gradient transformation is registered under.
const PassName = "Gradient"

func init() {
	pass.Register(&pass.Pass{
		Name:        PassName,
		Description: "Build the reverse-mode gradient graph of grad_ys with respect to grad_xs",
		ChangeGraph: true,
		DependGraphAttrs: []string{
			graph.AttrGradYs,
			graph.AttrGradXs,
			graph.AttrGradYsOutGrad,
		},
		Body: Run,
	})
}

// Run reads the gradient request from the attributes of src and builds the
// gradient graph. The logger carried by ctx is used for diagnostics.
func Run(ctx context.Context, src *graph.Graph) (*graph.Graph, error) {
	cfg, err := ConfigFromGraph(src)
	if err != nil {
		return nil, err
	}
	cfg.Logger = pass.LoggerFromContext(ctx)
	return Gradient(cfg)
}
