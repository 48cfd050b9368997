package flowcore

import (
	"reflect"
	"sync"
)

// operationTypeNames memoizes reflect.Type -> concrete Go type name
// lookups. LoggingInterceptor wants a human label for the Operation of
// every Effect it is offered; reflect.TypeOf is cheap but not free, and a
// chain that sees many effects runs it often enough to be worth caching.
// A plain sync.Map is enough here: the
// only two operations this cache ever needs are a lookup and a fill, so a
// dedicated cache type with Delete/Range/Size would carry methods nothing
// in this package calls.
var operationTypeNames sync.Map

// operationTypeName returns op's concrete Go type name, computing and
// caching it on first use for that type. A nil op yields "<nil>".
func operationTypeName(op Operation) string {
	t := reflect.TypeOf(op)
	if t == nil {
		return "<nil>"
	}
	if name, ok := operationTypeNames.Load(t); ok {
		return name.(string)
	}
	name := t.String()
	operationTypeNames.Store(t, name)
	return name
}
