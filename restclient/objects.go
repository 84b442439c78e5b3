// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"fmt"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/restdata"
	"strings"
)

const (
	collectionTemplate = "{+base}/{collection}"
	objectTemplate     = "{+base}/{collection}/{id}"
	copyTemplate       = "{+base}/{collection}:copy"
)

// List retrieves the objects of a collection matching q.  q must not
// be in count mode; use Count for that.
func (e *Endpoint) List(ctx context.Context, d *hps.Descriptor, q Query) ([]hps.Object, error) {
	items, err := e.ListRaw(ctx, d.Collection, q)
	if err != nil {
		return nil, err
	}
	return decodeItems(d, items)
}

// ListRaw retrieves the objects of a collection matching q as plain
// maps.
func (e *Endpoint) ListRaw(ctx context.Context, collection string, q Query) ([]map[string]interface{}, error) {
	if q.IsCount() {
		return nil, hps.NewClientError(fmt.Sprintf("Cannot list %s in count mode", collection), "")
	}
	var env restdata.Envelope
	vars := map[string]interface{}{"collection": collection}
	if err := e.Get(ctx, collectionTemplate, vars, q, &env); err != nil {
		return nil, err
	}
	return env.Items(collection)
}

// Count returns the number of objects of a collection matching q.
func (e *Endpoint) Count(ctx context.Context, collection string, q Query) (int, error) {
	var env restdata.Envelope
	vars := map[string]interface{}{"collection": collection}
	if err := e.Get(ctx, collectionTemplate, vars, q.Count(), &env); err != nil {
		return 0, err
	}
	return env.Count(collection)
}

// GetOne retrieves a single object by id.  It returns nil with no
// error if there is no such object.  The server answers with a list;
// more than one object in it is an *hps.ClientError.
func (e *Endpoint) GetOne(ctx context.Context, d *hps.Descriptor, id string, q Query) (hps.Object, error) {
	if id == "" {
		return nil, hps.NewClientError(fmt.Sprintf("Cannot get %s with an empty id", d.Type), "")
	}
	var env restdata.Envelope
	vars := map[string]interface{}{"collection": d.Collection, "id": id}
	if err := e.Get(ctx, objectTemplate, vars, q, &env); err != nil {
		return nil, err
	}
	items, err := env.Items(d.Collection)
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return hps.DecodeObject(d, items[0])
	default:
		return nil, hps.NewClientError(
			fmt.Sprintf("Multiple %s objects with id %s", d.Type, id), "")
	}
}

// Create submits new objects, which must all be of one type, and
// returns the server's representation of them.  An empty list
// returns immediately.
func (e *Endpoint) Create(ctx context.Context, objs []hps.Object, q Query) ([]hps.Object, error) {
	if len(objs) == 0 {
		return []hps.Object{}, nil
	}
	d, err := homogeneous(objs)
	if err != nil {
		return nil, err
	}
	env, err := encodeItems(d, objs)
	if err != nil {
		return nil, err
	}
	var out restdata.Envelope
	vars := map[string]interface{}{"collection": d.Collection}
	if _, err := e.PostTo(ctx, collectionTemplate, vars, q, env, &out); err != nil {
		return nil, err
	}
	items, err := out.Items(d.Collection)
	if err != nil {
		return nil, err
	}
	return decodeItems(d, items)
}

// Update submits changed objects, which must all be of one type.
// Only fields that are set are sent.  The response is decoded as
// objects of type ret, or of the input type if ret is nil.  An empty
// list returns immediately.
func (e *Endpoint) Update(ctx context.Context, objs []hps.Object, ret *hps.Descriptor, q Query) ([]hps.Object, error) {
	if len(objs) == 0 {
		return []hps.Object{}, nil
	}
	d, err := homogeneous(objs)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		ret = d
	}
	env, err := encodeItems(d, objs)
	if err != nil {
		return nil, err
	}
	var out restdata.Envelope
	vars := map[string]interface{}{"collection": d.Collection}
	if err := e.PutTo(ctx, collectionTemplate, vars, q, env, &out); err != nil {
		return nil, err
	}
	items, err := out.Items(ret.Collection)
	if err != nil {
		return nil, err
	}
	return decodeItems(ret, items)
}

// Delete removes objects, which must all be of one type and all have
// ids.  An empty list returns immediately.
func (e *Endpoint) Delete(ctx context.Context, objs []hps.Object) error {
	if len(objs) == 0 {
		return nil
	}
	d, err := homogeneous(objs)
	if err != nil {
		return err
	}
	ids, err := objectIDs(d, objs)
	if err != nil {
		return err
	}
	vars := map[string]interface{}{"collection": d.Collection}
	return e.DeleteAt(ctx, collectionTemplate, vars, restdata.SourceIDs{SourceIDs: ids})
}

// Copy asks the server to copy objects, which must all be of one type
// and all have ids, and returns the id of the operation doing the
// copy.
func (e *Endpoint) Copy(ctx context.Context, objs []hps.Object) (string, error) {
	if len(objs) == 0 {
		return "", hps.NewClientError("Cannot copy an empty list of objects", "")
	}
	d, err := homogeneous(objs)
	if err != nil {
		return "", err
	}
	ids, err := objectIDs(d, objs)
	if err != nil {
		return "", err
	}
	vars := map[string]interface{}{"collection": d.Collection}
	resp, err := e.PostTo(ctx, copyTemplate, vars, nil, restdata.SourceIDs{SourceIDs: ids}, nil)
	if err != nil {
		return "", err
	}
	location := strings.TrimRight(resp.Header.Get("Location"), "/")
	opID := location[strings.LastIndex(location, "/")+1:]
	if opID == "" {
		return "", hps.NewAPIError(
			fmt.Sprintf("Copy of %s with ids %s returned no operation", d.Type, strings.Join(ids, ", ")), "")
	}
	return opID, nil
}

// homogeneous returns the descriptor shared by all of objs.
func homogeneous(objs []hps.Object) (*hps.Descriptor, error) {
	var types []string
	seen := make(map[string]bool)
	for _, obj := range objs {
		if obj == nil {
			return nil, hps.NewClientError("Cannot submit a nil object", "")
		}
		t := obj.ObjType()
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	if len(types) > 1 {
		return nil, hps.MixedTypesError(types)
	}
	return hps.DescriptorOf(objs[0])
}

func objectIDs(d *hps.Descriptor, objs []hps.Object) ([]string, error) {
	ids := make([]string, len(objs))
	for i, obj := range objs {
		ids[i] = obj.ObjectID()
		if ids[i] == "" {
			return nil, hps.NewClientError(fmt.Sprintf("%s object %d has no id", d.Type, i), "")
		}
	}
	return ids, nil
}

func encodeItems(d *hps.Descriptor, objs []hps.Object) (restdata.Envelope, error) {
	items := make([]map[string]interface{}, len(objs))
	for i, obj := range objs {
		m, err := hps.EncodeObject(obj)
		if err != nil {
			return nil, err
		}
		items[i] = m
	}
	return restdata.NewEnvelope(d.Collection, items), nil
}

func decodeItems(d *hps.Descriptor, items []map[string]interface{}) ([]hps.Object, error) {
	objs := make([]hps.Object, len(items))
	for i, item := range items {
		obj, err := hps.DecodeObject(d, item)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}
	return objs, nil
}
