package catalog

import "errors"

// SkipCategory returned from a WalkFunc skips the category's children.
var SkipCategory = errors.New("skip category")

// WalkFunc is called for every category. path holds the names of its
// ancestors, outermost first.
type WalkFunc func(path []string, c *Category) error

// Sounds returns the library sounds in document order.
func (l *SoundList) Sounds() []*Sound {
	var out []*Sound
	for _, e := range l.Entries {
		if s, ok := e.(*Sound); ok {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the top-level categories of all Categories entries.
func (l *SoundList) Categories() []*Category {
	var out []*Category
	for _, e := range l.Entries {
		if c, ok := e.(*Categories); ok {
			out = append(out, c.Categories...)
		}
	}
	return out
}

// Resolve looks up the library sound a category entry refers to.
func (l *SoundList) Resolve(ref *CategorySound) (*Sound, bool) {
	for _, s := range l.Sounds() {
		if s.Index == ref.ID {
			return s, true
		}
	}
	return nil, false
}

// FindCategory returns the first category named name, searching depth first.
func (l *SoundList) FindCategory(name string) *Category {
	var found *Category
	_ = l.Walk(func(_ []string, c *Category) error {
		if c.Name == name {
			found = c
			return errStop
		}
		return nil
	})
	return found
}

var errStop = errors.New("stop")

// Walk visits every category depth first in document order. It stops at the
// first error other than SkipCategory and returns it.
func (l *SoundList) Walk(fn WalkFunc) error {
	for _, c := range l.Categories() {
		if err := walk(nil, c, fn); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func walk(path []string, c *Category, fn WalkFunc) error {
	if err := fn(path, c); err != nil {
		if errors.Is(err, SkipCategory) {
			return nil
		}
		return err
	}
	path = append(path[:len(path):len(path)], c.Name)
	for _, sub := range c.SubCategories() {
		if err := walk(path, sub, fn); err != nil {
			return err
		}
	}
	return nil
}

// Sounds returns the direct sound entries of c.
func (c *Category) Sounds() []*CategorySound {
	var out []*CategorySound
	for _, it := range c.Items {
		if s, ok := it.(*CategorySound); ok {
			out = append(out, s)
		}
	}
	return out
}

// SubCategories returns the direct child categories of c.
func (c *Category) SubCategories() []*Category {
	var out []*Category
	for _, it := range c.Items {
		if sub, ok := it.(*Category); ok {
			out = append(out, sub)
		}
	}
	return out
}

func (c *Category) HasIcon() bool { return c.Icon != "" }
