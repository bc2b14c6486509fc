package queue

import (
	"fmt"
	"reflect"
)

// ensureBitCopyable rejects payload types that cannot be safely published by
// a raw memory copy: pointers, interfaces, slices, strings, maps, channels,
// functions, and unsafe.Pointer, at any depth of a struct or array. A
// pointer value stored into a shared-memory region is meaningless (or
// actively dangerous) to a peer process mapping the same bytes at a
// different address, so this check stands in for the C++ lineage's
// compile-time std::is_trivially_copyable assertion. Go generics give no
// compile-time hook for this, so the check runs once, at construction.
func ensureBitCopyable(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Slice, reflect.String, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s", ErrNotBitCopyable, t)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := ensureBitCopyable(t.Field(i).Type); err != nil {
				return err
			}
		}
	case reflect.Array:
		return ensureBitCopyable(t.Elem())
	}
	return nil
}
