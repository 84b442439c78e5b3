// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"fmt"
	"github.com/diffeo/go-hps/hps"
)

// The functions in this file are typed forms of the Endpoint
// methods.  T is a resource pointer type such as *hps.Job.  Where the
// objects themselves name their type, T may also be hps.Object, and
// the objects must still all be of one type.

func descriptorFor[T hps.Object]() (*hps.Descriptor, error) {
	d, ok := hps.DescriptorFor[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("restclient: %T is not a registered resource type", zero)
	}
	return d, nil
}

func toObjects[T hps.Object](objs []T) []hps.Object {
	out := make([]hps.Object, len(objs))
	for i, obj := range objs {
		out[i] = obj
	}
	return out
}

func fromObjects[T hps.Object](objs []hps.Object) ([]T, error) {
	out := make([]T, len(objs))
	for i, obj := range objs {
		t, ok := obj.(T)
		if !ok {
			return nil, fmt.Errorf("restclient: got %s, want %T", obj.ObjType(), t)
		}
		out[i] = t
	}
	return out, nil
}

// ListObjects retrieves the objects of type T matching q.
func ListObjects[T hps.Object](ctx context.Context, e *Endpoint, q Query) ([]T, error) {
	d, err := descriptorFor[T]()
	if err != nil {
		return nil, err
	}
	objs, err := e.List(ctx, d, q)
	if err != nil {
		return nil, err
	}
	return fromObjects[T](objs)
}

// CountObjects returns the number of objects of type T matching q.
func CountObjects[T hps.Object](ctx context.Context, e *Endpoint, q Query) (int, error) {
	d, err := descriptorFor[T]()
	if err != nil {
		return 0, err
	}
	return e.Count(ctx, d.Collection, q)
}

// GetObject retrieves one object of type T by id.  If there is no
// such object it returns the zero T, typically nil, and no error.
func GetObject[T hps.Object](ctx context.Context, e *Endpoint, id string, q Query) (T, error) {
	var zero T
	d, err := descriptorFor[T]()
	if err != nil {
		return zero, err
	}
	obj, err := e.GetOne(ctx, d, id, q)
	if err != nil || obj == nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("restclient: got %s, want %T", obj.ObjType(), zero)
	}
	return t, nil
}

// CreateObjects submits new objects and returns the server's
// representation of them.
func CreateObjects[T hps.Object](ctx context.Context, e *Endpoint, objs []T, q Query) ([]T, error) {
	created, err := e.Create(ctx, toObjects(objs), q)
	if err != nil {
		return nil, err
	}
	return fromObjects[T](created)
}

// UpdateObjects submits changed objects and returns the server's
// representation of them.
func UpdateObjects[T hps.Object](ctx context.Context, e *Endpoint, objs []T, q Query) ([]T, error) {
	updated, err := e.Update(ctx, toObjects(objs), nil, q)
	if err != nil {
		return nil, err
	}
	return fromObjects[T](updated)
}

// UpdateObjectsAs submits changed objects of type T to an endpoint
// that answers with objects of a different type R.
func UpdateObjectsAs[T, R hps.Object](ctx context.Context, e *Endpoint, objs []T, q Query) ([]R, error) {
	ret, err := descriptorFor[R]()
	if err != nil {
		return nil, err
	}
	updated, err := e.Update(ctx, toObjects(objs), ret, q)
	if err != nil {
		return nil, err
	}
	return fromObjects[R](updated)
}

// DeleteObjects removes objects.
func DeleteObjects[T hps.Object](ctx context.Context, e *Endpoint, objs []T) error {
	return e.Delete(ctx, toObjects(objs))
}

// CopyObjects starts copying objects and returns the id of the
// operation doing the copy.
func CopyObjects[T hps.Object](ctx context.Context, e *Endpoint, objs []T) (string, error) {
	return e.Copy(ctx, toObjects(objs))
}

// CopyObjectsAndWait copies objects, waits for the copy to finish
// using p, and returns the ids of the new objects.
func CopyObjectsAndWait[T hps.Object](ctx context.Context, e *Endpoint, objs []T, p *Poller) ([]string, error) {
	return e.CopyAndWait(ctx, toObjects(objs), p)
}
