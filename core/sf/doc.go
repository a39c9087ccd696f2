// Package sf deduplicates concurrent calls that share a key.
//
// While a call for a key is in flight, further callers with the same key wait
// for it and receive its result instead of starting their own:
//
//	var g sf.Group[*client.Snapshot]
//	snap, shared, err := g.Do(query, func() (*client.Snapshot, error) {
//	    return fetch(ctx, query)
//	})
package sf
