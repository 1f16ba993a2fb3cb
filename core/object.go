package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is the interface satisfied by every PDF object type.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType identifies the concrete type of a PDF object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjIndirect
)

// String returns the name of the object type.
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjIndirect:
		return "IndirectRef"
	default:
		return "Unknown"
	}
}

// Null represents the PDF null object.
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }

// Bool represents a PDF boolean.
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents a PDF integer.
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number.
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a PDF string object.
type String string

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return string(s) }

// Name represents a PDF name object (e.g. /Type, /Root).
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array represents a PDF array.
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements in the array.
func (a Array) Len() int {
	return len(a)
}

// Get retrieves the element at index, or nil when out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// GetInt retrieves an integer element at index.
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetString retrieves a string element at index.
func (a Array) GetString(index int) (String, bool) {
	s, ok := a.Get(index).(String)
	return s, ok
}

// Dict represents a PDF dictionary.
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) String() string {
	var parts []string
	for key, val := range d {
		parts = append(parts, fmt.Sprintf("/%s %s", key, val.String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get retrieves a value from the dictionary, or nil when absent.
func (d Dict) Get(key string) Object {
	return d[key]
}

// Has checks if a key exists in the dictionary.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// GetInt retrieves an integer value.
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// GetName retrieves a name value.
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

// GetArray retrieves an array value.
func (d Dict) GetArray(key string) (Array, bool) {
	a, ok := d[key].(Array)
	return a, ok
}

// GetDict retrieves a nested dictionary value.
func (d Dict) GetDict(key string) (Dict, bool) {
	nested, ok := d[key].(Dict)
	return nested, ok
}

// GetIndirectRef retrieves an indirect reference value.
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) {
	ref, ok := d[key].(IndirectRef)
	return ref, ok
}

// Keys returns all keys in the dictionary, in map order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	return keys
}

// IndirectRef represents a reference to an indirect object ("3 0 R").
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}
