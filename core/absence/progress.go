package absence

import "context"

// Network phases reported by CreateTasks.
const (
	PhaseTeachers = "Loading teachers"
	PhaseStudents = "Fetching students"
	PhaseTasks    = "Creating tasks"
)

type ProgressFunc func(phase string)

type progressKey struct{}

// WithProgress returns a context whose network phases are reported to fn before they start.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func reportProgress(ctx context.Context, phase string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(phase)
	}
}
