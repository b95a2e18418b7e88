package absence

import (
	"context"
	"sync"
)

type TeacherLoader func(ctx context.Context) ([]Teacher, error)

// TeacherCache holds the teacher list for the lifetime of a session.
// It loads on first use and only reloads on Refresh or after Invalidate.
type TeacherCache struct {
	mu       sync.Mutex
	load     TeacherLoader
	teachers []Teacher
	loaded   bool
}

func NewTeacherCache(load TeacherLoader) *TeacherCache {
	return &TeacherCache{load: load}
}

func (c *TeacherCache) Get(ctx context.Context) ([]Teacher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.copy(), nil
	}
	return c.reload(ctx)
}

// Refresh reloads the list. On failure the previous list is kept.
func (c *TeacherCache) Refresh(ctx context.Context) ([]Teacher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx)
}

func (c *TeacherCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teachers = nil
	c.loaded = false
}

func (c *TeacherCache) reload(ctx context.Context) ([]Teacher, error) {
	teachers, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.teachers = teachers
	c.loaded = true
	return c.copy(), nil
}

func (c *TeacherCache) copy() []Teacher {
	teachers := make([]Teacher, len(c.teachers))
	copy(teachers, c.teachers)
	return teachers
}
