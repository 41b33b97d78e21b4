// Package delegate builds forwarding tables that map a fixed set of method
// and property names onto a delegation target. A table is built once, when
// its owner is constructed, so per-call forwarding is a plain map lookup
// and an invocation of an already-bound method value.
package delegate

import (
	"errors"
	"fmt"
	"reflect"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Table holds method values bound to a delegation target. Method names are
// resolved exactly once, at construction; a name the target does not have
// makes construction fail.
type Table struct {
	methods map[string]reflect.Value
	props   map[string]reflect.Value
}

// NewTable resolves the given method and property names against target and
// returns the bound table. Property names must resolve to zero-argument
// methods; they are meant for direct, non-dispatched state reads.
func NewTable(target any, methodNames []string, propNames []string) (*Table, error) {
	value := reflect.ValueOf(target)
	if !value.IsValid() {
		return nil, errors.New("delegation target must not be nil")
	}

	table := &Table{
		methods: make(map[string]reflect.Value, len(methodNames)),
		props:   make(map[string]reflect.Value, len(propNames)),
	}

	for _, name := range methodNames {
		method := value.MethodByName(name)
		if !method.IsValid() {
			return nil, fmt.Errorf("delegation target %T has no method %q", target, name)
		}
		table.methods[name] = method
	}

	for _, name := range propNames {
		method := value.MethodByName(name)
		if !method.IsValid() {
			return nil, fmt.Errorf("delegation target %T has no property accessor %q", target, name)
		}
		if method.Type().NumIn() != 0 {
			return nil, fmt.Errorf("property accessor %q of %T must take no arguments", name, target)
		}
		table.props[name] = method
	}

	return table, nil
}

// Call invokes the bound method registered under name with the given
// arguments and returns its value result (if any) and error result (if
// any). Failures raised by the method come back unmodified.
func (t *Table) Call(name string, args ...any) (any, error) {
	method, found := t.methods[name]
	if !found {
		return nil, fmt.Errorf("method %q is not delegated", name)
	}

	methodType := method.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(methodType.In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	return splitResults(method.Call(in))
}

// Prop reads the property registered under name. The read happens on the
// calling goroutine; properties are never dispatched.
func (t *Table) Prop(name string) (any, error) {
	method, found := t.props[name]
	if !found {
		return nil, fmt.Errorf("property %q is not delegated", name)
	}
	return splitResults(method.Call(nil))
}

// splitResults separates a method's return values into the value and error
// conventions used across this module: the last error-typed result is the
// error, the first non-error result is the value.
func splitResults(out []reflect.Value) (any, error) {
	var value any
	var err error

	for _, res := range out {
		if res.Type().Implements(errType) {
			if !res.IsNil() {
				err = res.Interface().(error)
			}
			continue
		}
		if value == nil {
			value = res.Interface()
		}
	}

	return value, err
}
