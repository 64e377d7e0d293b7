package taskgen

import (
	"errors"

	"github.com/GoCodeAlone/taskgen/bundle"
)

// TransformResolver loads the bundle transforms a sub-task names.
type TransformResolver struct {
	loader TransformLoader
	logger Logger
}

// NewTransformResolver creates a resolver backed by loader.
func NewTransformResolver(loader TransformLoader, logger Logger) *TransformResolver {
	return &TransformResolver{loader: loader, logger: loggerOrNoop(logger)}
}

// Resolve loads refs in order. Transforms that cannot be loaded are logged and
// left out; the rest keep their relative order. Options are only attached
// when they are a non-empty object.
func (r *TransformResolver) Resolve(refs []TransformRef) []bundle.Transform {
	out := make([]bundle.Transform, 0, len(refs))
	for _, ref := range refs {
		if r.loader == nil {
			r.logger.Error("Transform is not found", "transform", ref.Name, "error", ErrTransformNotFound)
			continue
		}
		fn, err := r.loader.Load(ref.Name)
		if err != nil {
			if errors.Is(err, bundle.ErrTransformNotFound) || errors.Is(err, ErrTransformNotFound) {
				r.logger.Error("Transform is not found", "transform", ref.Name)
			} else {
				r.logger.Error(err.Error(), "transform", ref.Name)
			}
			continue
		}
		t := bundle.Transform{Name: ref.Name, Func: fn}
		if opts, ok := ref.Options.(map[string]any); ok && len(opts) > 0 {
			t.Options = opts
		}
		r.logger.Debug("Resolved transform", "transform", ref.Name, "options", t.Options)
		out = append(out, t)
	}
	return out
}
