package taskgen

import "github.com/GoCodeAlone/taskgen/matcher"

// BuildSourceSet turns spec into glob patterns: the anchored include entries
// in order, then every anchored exclude entry prefixed with "!". Nothing is
// de-duplicated. Each pattern is logged at debug level.
func BuildSourceSet(paths *Paths, spec SourceSpec, logger Logger) []string {
	logger = loggerOrNoop(logger)
	if spec.IsEmpty() {
		return []string{}
	}
	patterns := make([]string, 0, len(spec.Include)+len(spec.Exclude))
	patterns = append(patterns, paths.AbsAll(spec.Include)...)
	for _, ex := range spec.Exclude {
		patterns = append(patterns, matcher.Negation+paths.Abs(ex))
	}
	for _, p := range patterns {
		logger.Debug("Source pattern", "pattern", paths.Display(p))
	}
	return patterns
}
