package routing

import (
	"maps"
	"slices"
	"strings"

	"dario.cat/mergo"

	"github.com/km-arc/branch/framework/resolver"
)

// Config is the local configuration of a route or a group.
//
// For a group, Path is the prefix and Name a name prefix applied to every
// named route inside it.
type Config struct {
	Path       string            `mapstructure:"path" yaml:"path"`
	Name       string            `mapstructure:"name" yaml:"name"`
	Middleware []any             `mapstructure:"middleware" yaml:"middleware"`
	Where      map[string]string `mapstructure:"where" yaml:"where"`
	Extra      map[string]any    `mapstructure:"extra" yaml:"extra"`
}

// frame is the effective group scope at one depth of the group stack.
type frame struct {
	prefix     string
	namePrefix string
	middleware []resolver.Definition
	where      map[string]string
	extra      map[string]any
}

// merge applies a local config on top of the frame: paths and names
// concatenate, middleware concatenates outer then local, where and extra
// are merged with local values winning.
func (f frame) merge(cfg Config, classes *resolver.Registry) (frame, error) {
	extra, err := mergeExtra(f.extra, cfg.Extra)
	if err != nil {
		return frame{}, err
	}
	where := maps.Clone(f.where)
	if where == nil {
		where = map[string]string{}
	}
	maps.Copy(where, cfg.Where)

	mw := slices.Clone(f.middleware)
	for _, m := range cfg.Middleware {
		mw = append(mw, resolver.Classify(m, classes))
	}

	return frame{
		prefix:     joinPath(f.prefix, cfg.Path),
		namePrefix: f.namePrefix + cfg.Name,
		middleware: mw,
		where:      where,
		extra:      extra,
	}, nil
}

// groupStack holds the frames of the groups currently being registered.
type groupStack []frame

func (s groupStack) top() frame {
	if len(s) == 0 {
		return frame{}
	}
	return s[len(s)-1]
}

func (s *groupStack) push(f frame) { *s = append(*s, f) }

func (s *groupStack) pop() { *s = (*s)[:len(*s)-1] }

func joinPath(prefix, path string) string {
	prefix = strings.Trim(prefix, "/")
	path = strings.Trim(path, "/")
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	default:
		return prefix + "/" + path
	}
}

// mergeExtra returns a new map: outer deep-copied, then local applied. Local
// scalars always win; nested maps present on both sides are merged by mergo
// with override.
func mergeExtra(outer, local map[string]any) (map[string]any, error) {
	out := copyMap(outer)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range local {
		src, srcIsMap := v.(map[string]any)
		dst, dstIsMap := out[k].(map[string]any)
		if srcIsMap && dstIsMap {
			if err := mergo.Merge(&dst, copyMap(src), mergo.WithOverride); err != nil {
				return nil, err
			}
			out[k] = dst
			continue
		}
		out[k] = v
	}
	return out, nil
}

// copyMap deep-copies nested map[string]any values so frames never share
// mutable state.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
