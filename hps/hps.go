// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package hps defines the resource types exchanged with an HPS/REP
// job-management service, and the registry that binds each type to
// the REST collection that serves it.
//
// Every resource type is a struct whose fields are all Optional
// values.  A field that the server did not send (because it was not
// requested through the "fields" query parameter, for instance)
// remains unset, which is different from a field the server sent as
// null.  When a resource is submitted back to the server only fields
// that are set are transmitted, so
//
//     job := &hps.Job{}
//     job.ID.Set("02q4bg")
//     job.Priority.Set(5)
//
// sends exactly {"id": "02q4bg", "priority": 5}.
//
// Registry
//
// Each resource type registers a Descriptor at initialization time
// naming its object type ("Job"), its collection name ("jobs"), and a
// constructor.  The generic CRUD functions in the restclient package
// look up descriptors to build URLs and to decode responses.
package hps

import (
	"fmt"
	"sort"
)

// Object is any resource that can be stored in an HPS collection.
type Object interface {
	// ObjType returns the name of the resource type, such as
	// "Job".  This must not depend on the receiver's contents,
	// and must be safe to call on a nil pointer.
	ObjType() string

	// ObjectID returns the server-assigned identifier of the
	// object, or an empty string if it has none yet.
	ObjectID() string
}

// Descriptor binds a resource type to its REST collection.
type Descriptor struct {
	// Type is the object type name, matching Object.ObjType().
	Type string

	// Collection is the name of the REST collection serving this
	// type; it is both the final URL path component and the key
	// of the JSON envelope.
	Collection string

	// New creates an empty object of this type.
	New func() Object
}

var (
	byType       = make(map[string]*Descriptor)
	byCollection = make(map[string]*Descriptor)
)

// register adds a descriptor to the registry.  It panics on
// duplicates since that can only be a programming error.
func register(d Descriptor) {
	if _, dup := byType[d.Type]; dup {
		panic(fmt.Sprintf("hps: duplicate object type %q", d.Type))
	}
	if _, dup := byCollection[d.Collection]; dup {
		panic(fmt.Sprintf("hps: duplicate collection %q", d.Collection))
	}
	desc := d
	byType[d.Type] = &desc
	byCollection[d.Collection] = &desc
}

// Lookup finds the descriptor for an object type name.
func Lookup(objType string) (*Descriptor, bool) {
	d, ok := byType[objType]
	return d, ok
}

// LookupCollection finds the descriptor for a REST collection name.
func LookupCollection(collection string) (*Descriptor, bool) {
	d, ok := byCollection[collection]
	return d, ok
}

// DescriptorOf returns the descriptor for the type of obj.
func DescriptorOf(obj Object) (*Descriptor, error) {
	if obj == nil {
		return nil, fmt.Errorf("hps: no descriptor for nil object")
	}
	d, ok := byType[obj.ObjType()]
	if !ok {
		return nil, fmt.Errorf("hps: unregistered object type %q", obj.ObjType())
	}
	return d, nil
}

// DescriptorFor returns the descriptor for a concrete resource type
// parameter, such as *Job.  It returns false if T is an interface
// type, in which case the descriptor has to come from an actual
// object.
func DescriptorFor[T Object]() (*Descriptor, bool) {
	var zero T
	if any(zero) == nil {
		return nil, false
	}
	d, ok := byType[zero.ObjType()]
	return d, ok
}

// Descriptors returns all registered descriptors sorted by collection
// name.
func Descriptors() []*Descriptor {
	result := make([]*Descriptor, 0, len(byCollection))
	for _, d := range byCollection {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Collection < result[j].Collection
	})
	return result
}
