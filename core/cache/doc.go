// Package cache provides small in-process caches keyed by string.
//
// [LRU] evicts the least recently used entry once it holds Size entries.
// [Nop] never stores anything and is useful to disable caching:
//
//	var c cache.Cache[*catalog.SoundList] = cache.NewLRU[*catalog.SoundList](cache.LRUOpts{Size: 4})
//	c.Put(fingerprint, list)
//	list, ok := c.Get(fingerprint)
package cache
