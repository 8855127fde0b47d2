package uow

import (
	"context"
	"log/slog"
)

// AfterCommit runs once the unit of work has succeeded.
type AfterCommit func(ctx context.Context) error

// UoW runs a unit of work and then its after-commit hooks. The write itself
// owns its transaction; UoW only guarantees hooks never run for a failed
// unit and that hook failures do not undo a committed one.
type UoW struct {
	logger *slog.Logger
}

func NewUoW(logger *slog.Logger) *UoW {
	if logger == nil {
		logger = slog.Default()
	}
	return &UoW{logger: logger}
}

// Do runs fn. After fn returns nil it executes the registered hooks in
// order; a failing hook is logged and the rest still run.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, after func(name string, h AfterCommit)) error,
) error {
	type hook struct {
		name string
		run  AfterCommit
	}
	var hooks []hook

	err := fn(ctx, func(name string, h AfterCommit) {
		hooks = append(hooks, hook{name: name, run: h})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		if err := h.run(ctx); err != nil {
			u.logger.Error("after-commit hook failed",
				slog.String("hook", h.name),
				slog.Any("err", err),
			)
		}
	}

	return nil
}
