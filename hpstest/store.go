// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hpstest

import (
	"fmt"
	"github.com/diffeo/go-hps/restdata"
	"github.com/gorilla/mux"
	"github.com/satori/go.uuid"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Scopes name the API roots objects are stored under.
const (
	JMS = "jms"
	RMS = "rms"
)

// ProjectScope names the API root of one project.
func ProjectScope(projectID string) string {
	return JMS + "/projects/" + projectID
}

// collection holds the objects of one collection in insertion order.
type collection struct {
	order   []string
	objects map[string]map[string]interface{}
}

func (c *collection) put(obj map[string]interface{}) {
	id := obj["id"].(string)
	if _, exists := c.objects[id]; !exists {
		c.order = append(c.order, id)
	}
	c.objects[id] = obj
}

func (c *collection) remove(id string) {
	if _, exists := c.objects[id]; !exists {
		return
	}
	delete(c.objects, id)
	for i, other := range c.order {
		if other == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *collection) list() []map[string]interface{} {
	result := make([]map[string]interface{}, len(c.order))
	for i, id := range c.order {
		result[i] = c.objects[id]
	}
	return result
}

// pendingOperation is a copy operation that has not been reported as
// finished yet.
type pendingOperation struct {
	polls int
	final map[string]interface{}
}

// reserved query parameters are not filters.
var reserved = map[string]bool{
	"fields": true,
	"count":  true,
	"limit":  true,
	"offset": true,
	"sort":   true,
}

func newID() string {
	return strings.Replace(uuid.NewV4().String(), "-", "", -1)[:22]
}

func copyObject(obj map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		result[k] = v
	}
	return result
}

// coll returns a collection, creating it if needed.  Call with the
// lock held.
func (s *Server) coll(scope, name string) *collection {
	colls := s.scopes[scope]
	if colls == nil {
		colls = make(map[string]*collection)
		s.scopes[scope] = colls
	}
	c := colls[name]
	if c == nil {
		c = &collection{objects: make(map[string]map[string]interface{})}
		colls[name] = c
	}
	return c
}

// Put stores objects directly, assigning ids to those without one,
// and returns their ids.
func (s *Server) Put(scope, name string, objs ...map[string]interface{}) []string {
	s.sem.Lock()
	defer s.sem.Unlock()
	ids := make([]string, len(objs))
	c := s.coll(scope, name)
	for i, obj := range objs {
		obj = copyObject(obj)
		if id, _ := obj["id"].(string); id == "" {
			obj["id"] = newID()
		}
		ids[i] = obj["id"].(string)
		c.put(obj)
	}
	return ids
}

// Get returns a stored object, or nil.
func (s *Server) Get(scope, name, id string) map[string]interface{} {
	s.sem.Lock()
	defer s.sem.Unlock()
	obj := s.coll(scope, name).objects[id]
	if obj == nil {
		return nil
	}
	return copyObject(obj)
}

// Len returns the number of stored objects in a collection.
func (s *Server) Len(scope, name string) int {
	s.sem.Lock()
	defer s.sem.Unlock()
	return len(s.coll(scope, name).order)
}

func scopeOf(vars map[string]string) string {
	if project := vars["project"]; project != "" {
		return vars["service"] + "/projects/" + project
	}
	return vars["service"]
}

// project returns the requested fields of obj.
func project(obj map[string]interface{}, fields string) map[string]interface{} {
	if fields == "" || fields == "all" {
		return copyObject(obj)
	}
	result := map[string]interface{}{"id": obj["id"]}
	for _, f := range strings.Split(fields, ",") {
		if v, ok := obj[f]; ok {
			result[f] = v
		}
	}
	return result
}

func matches(obj map[string]interface{}, query map[string][]string) bool {
	for key, values := range query {
		if reserved[key] {
			continue
		}
		v, ok := obj[key]
		if !ok {
			return false
		}
		found := false
		for _, want := range values {
			if fmt.Sprint(v) == want {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Server) collection(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	scope := scopeOf(vars)
	name := vars["collection"]
	if strings.HasSuffix(name, ":copy") {
		if req.Method != "POST" {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", req.Method)
			return
		}
		s.copy(w, req, scope, strings.TrimSuffix(name, ":copy"))
		return
	}
	switch req.Method {
	case "GET":
		s.list(w, req, scope, name)
	case "POST":
		s.create(w, req, scope, name)
	case "PUT":
		s.update(w, req, scope, name)
	case "DELETE":
		s.delete(w, req, scope, name)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", req.Method)
	}
}

func (s *Server) list(w http.ResponseWriter, req *http.Request, scope, name string) {
	query := req.URL.Query()
	s.sem.Lock()
	var selected []map[string]interface{}
	for _, obj := range s.coll(scope, name).list() {
		if matches(obj, query) {
			selected = append(selected, project(obj, query.Get("fields")))
		}
	}
	s.sem.Unlock()

	if count := query.Get("count"); count != "" && count != "false" && count != "0" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"num_" + name: len(selected)})
		return
	}
	if sortBy := query.Get("sort"); sortBy != "" {
		key := strings.TrimPrefix(sortBy, "-")
		desc := strings.HasPrefix(sortBy, "-")
		sort.SliceStable(selected, func(i, j int) bool {
			less := fmt.Sprint(selected[i][key]) < fmt.Sprint(selected[j][key])
			if desc {
				return fmt.Sprint(selected[j][key]) < fmt.Sprint(selected[i][key])
			}
			return less
		})
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil && offset > 0 {
		if offset > len(selected) {
			offset = len(selected)
		}
		selected = selected[offset:]
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit >= 0 && limit < len(selected) {
		selected = selected[:limit]
	}
	writeJSON(w, http.StatusOK, restdata.NewEnvelope(name, selected))
}

func (s *Server) object(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	scope := scopeOf(vars)
	name := vars["collection"]
	id := vars["id"]

	s.sem.Lock()
	if scope == JMS && name == "operations" {
		s.advanceOperation(id)
	}
	var items []map[string]interface{}
	if obj := s.coll(scope, name).objects[id]; obj != nil {
		items = append(items, project(obj, req.URL.Query().Get("fields")))
	}
	s.sem.Unlock()
	writeJSON(w, http.StatusOK, restdata.NewEnvelope(name, items))
}

func decodeItems(req *http.Request, name string) ([]map[string]interface{}, error) {
	var env restdata.Envelope
	if err := restdata.Decode(req.Header.Get("Content-Type"), req.Body, &env); err != nil {
		return nil, err
	}
	return env.Items(name)
}

func (s *Server) create(w http.ResponseWriter, req *http.Request, scope, name string) {
	items, err := decodeItems(req, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.sem.Lock()
	c := s.coll(scope, name)
	created := make([]map[string]interface{}, len(items))
	for i, item := range items {
		obj := copyObject(item)
		if id, _ := obj["id"].(string); id == "" {
			obj["id"] = newID()
		}
		c.put(obj)
		created[i] = copyObject(obj)
	}
	s.sem.Unlock()
	writeJSON(w, http.StatusCreated, restdata.NewEnvelope(name, created))
}

func (s *Server) update(w http.ResponseWriter, req *http.Request, scope, name string) {
	items, err := decodeItems(req, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.sem.Lock()
	defer s.sem.Unlock()
	c := s.coll(scope, name)
	for _, item := range items {
		id, _ := item["id"].(string)
		if c.objects[id] == nil {
			writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no %s with id %q", name, id))
			return
		}
	}
	updated := make([]map[string]interface{}, len(items))
	for i, item := range items {
		obj := c.objects[item["id"].(string)]
		for k, v := range item {
			obj[k] = v
		}
		updated[i] = copyObject(obj)
	}
	writeJSON(w, http.StatusOK, restdata.NewEnvelope(name, updated))
}

func (s *Server) delete(w http.ResponseWriter, req *http.Request, scope, name string) {
	var body restdata.SourceIDs
	if err := restdata.Decode(req.Header.Get("Content-Type"), req.Body, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.sem.Lock()
	c := s.coll(scope, name)
	for _, id := range body.SourceIDs {
		c.remove(id)
	}
	s.sem.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) copy(w http.ResponseWriter, req *http.Request, scope, name string) {
	var body restdata.SourceIDs
	if err := restdata.Decode(req.Header.Get("Content-Type"), req.Body, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	s.sem.Lock()
	defer s.sem.Unlock()
	c := s.coll(scope, name)
	for _, id := range body.SourceIDs {
		if c.objects[id] == nil {
			writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no %s with id %q", name, id))
			return
		}
	}
	var destinations []interface{}
	for _, id := range body.SourceIDs {
		obj := copyObject(c.objects[id])
		obj["id"] = newID()
		if s.outcome.Fail {
			continue
		}
		c.put(obj)
		destinations = append(destinations, obj["id"])
	}

	opID := newID()
	final := map[string]interface{}{
		"id":        opID,
		"name":      "copy " + name,
		"finished":  true,
		"succeeded": !s.outcome.Fail,
		"progress":  1.0,
		"status":    "completed",
	}
	if s.outcome.Fail {
		final["status"] = "failed"
		final["messages"] = []interface{}{map[string]interface{}{"msg": s.outcome.Message}}
	} else {
		final["result"] = map[string]interface{}{"destination_ids": destinations}
	}
	s.operations[opID] = &pendingOperation{polls: s.outcome.Polls, final: final}
	s.coll(JMS, "operations").put(map[string]interface{}{
		"id":       opID,
		"name":     final["name"],
		"finished": false,
		"progress": 0.0,
		"status":   "running",
	})

	w.Header().Set("Location", "/"+JMS+"/api/v1/operations/"+opID)
	w.WriteHeader(http.StatusAccepted)
}

// advanceOperation counts one poll of an operation, finishing it when
// its polls run out.  Call with the lock held.
func (s *Server) advanceOperation(id string) {
	pending := s.operations[id]
	if pending == nil {
		return
	}
	if pending.polls > 0 {
		pending.polls--
		return
	}
	s.coll(JMS, "operations").put(copyObject(pending.final))
	delete(s.operations, id)
}
