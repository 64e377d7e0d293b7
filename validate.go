package taskgen

import "fmt"

// CheckTaskConfig reports every problem Compose logs for cfg, in sub-task
// order. Unnamed sub-tasks are identified by position.
func CheckTaskConfig(cfg TaskConfig) []error {
	var problems []error
	if cfg.Name == "" {
		problems = append(problems, ErrTaskNameMissing)
	}
	if len(cfg.SubTasks) == 0 {
		return append(problems, fmt.Errorf("%w: %s", ErrSubTasksMissing, cfg.Name))
	}
	var acc Accumulator
	for i, declared := range cfg.SubTasks {
		id := declared.Name
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		sub, err := acc.Resolve(declared)
		if err != nil {
			problems = append(problems, fmt.Errorf("sub-task %s: %w", id, err))
		}
		if !sub.Valid() {
			problems = append(problems, fmt.Errorf("sub-task %s: %w", id, ErrSubTaskInvalid))
		}
	}
	return problems
}
