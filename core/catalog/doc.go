// Package catalog models the sound list a Soundpad instance returns for
// GetSoundlist(): a flat list of sounds followed by a category tree that
// refers to sounds by index, and an optional hotbar.
//
//	list, err := catalog.ParseString(response)
//	nom := list.FindCategory("Nom")
//	for _, ref := range nom.Sounds() {
//	    sound, _ := list.Resolve(ref)
//	    ...
//	}
//
// Element order is preserved: [SoundList.Entries] and [Category.Items] keep
// the document order of their mixed children.
package catalog
