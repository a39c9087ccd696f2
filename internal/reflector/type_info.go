package reflector

import (
	"path"
	"reflect"
	"sync"
)

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

// TypeInfo names a Go type for logs and metric labels.
type TypeInfo struct {
	// Name is the fully qualified name, e.g. github.com/x/y/pipe.Request.
	Name string
	// Short is the package-local name, e.g. pipe.Request.
	Short string
	Type  reflect.Type
}

func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeOf((*T)(nil)).Elem())
}

func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}

	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	key := t
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		// func literals, anonymous structs
		name = t.String()
	}

	ti = TypeInfo{
		Name:  name,
		Short: name,
		Type:  t,
	}
	if pkg := t.PkgPath(); pkg != "" {
		ti.Name = pkg + "." + name
		ti.Short = path.Base(pkg) + "." + name
	}

	muCache.Lock()
	cache[key] = ti
	muCache.Unlock()
	return ti
}
