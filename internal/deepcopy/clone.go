// Package deepcopy produces detached copies of arbitrary values so a snapshot
// never aliases the live value it was taken from.
package deepcopy

import (
	"reflect"
	"unsafe"
)

// Clone returns a deep copy of value. Pointers, maps, slices and interfaces
// are copied recursively, unexported struct fields included; pointer cycles
// are preserved. Channels, functions and unsafe pointers are shared.
func Clone[T any](value T) T {
	rv := reflect.ValueOf(&value).Elem()
	c := cloner{seen: map[pointerKey]reflect.Value{}}
	out := c.clone(rv)
	if !out.IsValid() {
		var zero T
		return zero
	}
	cloned, _ := out.Interface().(T)
	return cloned
}

type pointerKey struct {
	typ reflect.Type
	ptr uintptr
}

type cloner struct {
	seen map[pointerKey]reflect.Value
}

func (c cloner) clone(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		key := pointerKey{typ: v.Type(), ptr: v.Pointer()}
		if done, ok := c.seen[key]; ok {
			return done
		}
		out := reflect.New(v.Type().Elem())
		c.seen[key] = out
		out.Elem().Set(c.clone(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := c.clone(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Struct:
		src := reflect.New(v.Type()).Elem()
		src.Set(v)
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			from, to := src.Field(i), out.Field(i)
			if !to.CanSet() {
				from = exposed(from)
				to = exposed(to)
			}
			to.Set(c.clone(from))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(c.clone(iter.Key()), c.clone(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out
	default:
		return v
	}
}

// exposed returns a settable view of an addressable unexported field.
func exposed(field reflect.Value) reflect.Value {
	return reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
}
