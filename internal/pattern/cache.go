package pattern

import "sync"

// Cache memoises compiled templates by their flattened text. It is safe for
// concurrent use; failed compilations are not cached.
type Cache struct {
	m sync.Map // string -> *Pattern
}

// Compile is like the package-level Compile but returns the cached pattern
// when the same template was compiled before.
func (c *Cache) Compile(parts ...any) (*Pattern, error) {
	key := flatten(parts)
	if v, ok := c.m.Load(key); ok {
		return v.(*Pattern), nil
	}
	p, err := Compile(key)
	if err != nil {
		return nil, err
	}
	v, _ := c.m.LoadOrStore(key, p)
	return v.(*Pattern), nil
}
