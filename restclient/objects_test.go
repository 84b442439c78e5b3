// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"errors"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/hpstest"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func projectAPI(t *testing.T, c *Client, id string) *ProjectAPI {
	api, err := c.Project(id)
	require.NoError(t, err)
	return api
}

func requireClientError(t *testing.T, err error) *hps.ClientError {
	var ce *hps.ClientError
	require.True(t, errors.As(err, &ce), "%+v", err)
	return ce
}

func TestEndpointURLs(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))

	jms, err := c.JMS()
	require.NoError(t, err)
	assert.Equal(t, s.URL+"/jms/api/v1", jms.URL.String())

	api := projectAPI(t, c, "p1")
	assert.Equal(t, s.URL+"/jms/api/v1/projects/p1", api.URL.String())
	assert.Equal(t, "p1", api.ProjectID)

	rms, err := c.RMS()
	require.NoError(t, err)
	assert.Equal(t, s.URL+"/rms/api/v1", rms.URL.String())

	u, err := jms.Template(copyTemplate, map[string]interface{}{"collection": "projects"}, nil)
	require.NoError(t, err)
	assert.Equal(t, s.URL+"/jms/api/v1/projects:copy?fields=all", u.String())
}

func TestListFields(t *testing.T) {
	s := newServer(t)
	s.Put(hpstest.JMS, "projects",
		map[string]interface{}{"id": "p1", "name": "one", "priority": 3},
		map[string]interface{}{"id": "p2", "name": "two", "priority": 1},
	)
	c := newClient(t, testConfig(s))
	ctx := context.Background()
	jms, err := c.JMS()
	require.NoError(t, err)

	projects, err := jms.GetProjects(ctx, nil)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p1", projects[0].ObjectID())
	assert.Equal(t, hps.Some("one"), projects[0].Name)
	assert.Equal(t, hps.Some(3), projects[0].Priority)
	assert.Equal(t, "all", s.APIRequests()[0].Query.Get("fields"))

	projects, err = jms.GetProjects(ctx, Query{}.Fields("name").Filter("name", "two"))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p2", projects[0].ObjectID())
	assert.Equal(t, hps.Some("two"), projects[0].Name)
	assert.False(t, projects[0].Priority.IsSet())
	assert.Equal(t, "name", s.APIRequests()[1].Query.Get("fields"))

	config := testConfig(s)
	config.AllFields = Bool(false)
	c = newClient(t, config)
	jms, err = c.JMS()
	require.NoError(t, err)
	_, err = jms.GetProjects(ctx, nil)
	require.NoError(t, err)
	requests := s.APIRequests()
	_, hasFields := requests[len(requests)-1].Query["fields"]
	assert.False(t, hasFields)
}

func TestCountMode(t *testing.T) {
	s := newServer(t)
	scope := hpstest.ProjectScope("p1")
	s.Put(scope, "jobs",
		map[string]interface{}{"eval_status": "failed"},
		map[string]interface{}{"eval_status": "failed"},
		map[string]interface{}{"eval_status": "evaluated"},
	)
	c := newClient(t, testConfig(s))
	ctx := context.Background()
	api := projectAPI(t, c, "p1")

	n, err := CountObjects[*hps.Job](ctx, api.Endpoint, Query{}.Filter("eval_status", "failed"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "true", s.APIRequests()[0].Query.Get("count"))

	_, err = api.GetJobs(ctx, Query{}.Count())
	requireClientError(t, err)
	assert.Len(t, s.APIRequests(), 1)

	items, err := api.ListRaw(ctx, "jobs", Query{}.Limit(2))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "failed", items[0]["eval_status"])
}

func TestGetOne(t *testing.T) {
	s := newServer(t)
	s.Put(hpstest.ProjectScope("p1"), "jobs", map[string]interface{}{"id": "j1", "name": "first"})
	c := newClient(t, testConfig(s))
	ctx := context.Background()
	api := projectAPI(t, c, "p1")

	job, err := api.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, hps.Some("first"), job.Name)

	job, err = api.GetJob(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, job)

	_, err = api.GetJob(ctx, "")
	requireClientError(t, err)
	assert.Len(t, s.APIRequests(), 2)
}

func TestGetOneMultiple(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs": [{"id": "j1"}, {"id": "j1"}]}`))
	}))
	defer server.Close()

	logger, _ := logtest.NewNullLogger()
	c := newClient(t, Config{URL: server.URL, AccessToken: "token", Logger: logger})
	api := projectAPI(t, c, "p1")

	_, err := api.GetJob(context.Background(), "j1")
	ce := requireClientError(t, err)
	assert.Equal(t, "Multiple Job objects with id j1", ce.Reason)
}

func TestCreateUpdateDelete(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	ctx := context.Background()
	api := projectAPI(t, c, "p1")
	scope := hpstest.ProjectScope("p1")

	created, err := api.CreateJobs(ctx, []*hps.Job{
		{Name: hps.Some("a"), Note: hps.Some("first")},
		{Name: hps.Some("b")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEmpty(t, created[0].ObjectID())
	assert.NotEqual(t, created[0].ObjectID(), created[1].ObjectID())
	assert.Equal(t, hps.Some("a"), created[0].Name)
	assert.Equal(t, 2, s.Len(scope, "jobs"))

	stored := s.Get(scope, "jobs", created[1].ObjectID())
	_, hasNote := stored["note"]
	assert.False(t, hasNote, "unset fields are not sent")

	update := &hps.Job{EvalStatus: hps.Some(hps.StatusPending), Note: hps.Null[string]()}
	update.ID = created[0].ID
	updated, err := api.UpdateJobs(ctx, []*hps.Job{update})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, hps.Some("a"), updated[0].Name)
	assert.Equal(t, hps.Some(hps.StatusPending), updated[0].EvalStatus)
	assert.True(t, updated[0].Note.IsNull())

	stored = s.Get(scope, "jobs", created[0].ObjectID())
	note, hasNote := stored["note"]
	assert.True(t, hasNote)
	assert.Nil(t, note)

	require.NoError(t, api.DeleteJobs(ctx, created))
	assert.Equal(t, 0, s.Len(scope, "jobs"))
}

func TestUpdateMissing(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	api := projectAPI(t, c, "p1")

	job := &hps.Job{}
	job.ID = hps.Some("nope")
	_, err := api.UpdateJobs(context.Background(), []*hps.Job{job})
	ce := requireClientError(t, err)
	assert.Equal(t, 404, ce.StatusCode)
	assert.Equal(t, "not_found", ce.Reason)
	assert.Equal(t, "PUT", ce.Method)
}

func TestEmptyBatches(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	ctx := context.Background()
	api := projectAPI(t, c, "p1")

	created, err := api.CreateJobs(ctx, nil)
	assert.NoError(t, err)
	assert.Empty(t, created)

	updated, err := api.UpdateJobs(ctx, []*hps.Job{})
	assert.NoError(t, err)
	assert.Empty(t, updated)

	assert.NoError(t, api.DeleteJobs(ctx, nil))

	_, err = api.CopyJobDefinitions(ctx, nil)
	requireClientError(t, err)

	assert.Empty(t, s.APIRequests())
}

func TestMixedTypes(t *testing.T) {
	job := &hps.Job{}
	job.ID = hps.Some("j1")
	jd := &hps.JobDefinition{}
	jd.ID = hps.Some("jd1")
	objs := []hps.Object{job, &hps.Job{}, jd}

	for _, test := range []struct {
		name string
		call func(ctx context.Context, api *ProjectAPI) error
	}{
		{
			name: "create",
			call: func(ctx context.Context, api *ProjectAPI) error {
				_, err := api.Create(ctx, objs, nil)
				return err
			},
		},
		{
			name: "update",
			call: func(ctx context.Context, api *ProjectAPI) error {
				_, err := api.Update(ctx, objs, nil, nil)
				return err
			},
		},
		{
			name: "delete",
			call: func(ctx context.Context, api *ProjectAPI) error {
				return api.Delete(ctx, objs)
			},
		},
		{
			name: "copy",
			call: func(ctx context.Context, api *ProjectAPI) error {
				_, err := api.Copy(ctx, objs)
				return err
			},
		},
		{
			name: "generic create",
			call: func(ctx context.Context, api *ProjectAPI) error {
				_, err := CreateObjects[hps.Object](ctx, api.Endpoint, objs, nil)
				return err
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			s := newServer(t)
			c := newClient(t, testConfig(s))
			api := projectAPI(t, c, "p1")

			err := test.call(context.Background(), api)
			ce := requireClientError(t, err)
			assert.Equal(t, "Mixed object types: Job, JobDefinition", ce.Reason)
			assert.Empty(t, s.APIRequests())
		})
	}
}

func TestDeleteWithoutID(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	api := projectAPI(t, c, "p1")

	err := api.DeleteJobs(context.Background(), []*hps.Job{{Name: hps.Some("a")}})
	requireClientError(t, err)
	assert.Empty(t, s.APIRequests())
}

func TestUpdateObjectsAs(t *testing.T) {
	s := newServer(t)
	s.Put(hpstest.ProjectScope("p1"), "tasks", map[string]interface{}{"id": "t1", "eval_status": "running"})
	c := newClient(t, testConfig(s))
	api := projectAPI(t, c, "p1")

	task := &hps.Task{EvalStatus: hps.Some(hps.StatusAborted)}
	task.ID = hps.Some("t1")
	updated, err := UpdateObjectsAs[*hps.Task, *hps.Task](context.Background(), api.Endpoint, []*hps.Task{task}, nil)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, hps.Some(hps.StatusAborted), updated[0].EvalStatus)
}

func TestRMS(t *testing.T) {
	s := newServer(t)
	s.Put(hpstest.RMS, "evaluators",
		map[string]interface{}{"id": "e1", "host_id": "h1"},
		map[string]interface{}{"id": "e2", "host_id": "h2"},
	)
	c := newClient(t, testConfig(s))
	rms, err := c.RMS()
	require.NoError(t, err)

	evaluators, err := rms.GetEvaluators(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, evaluators, 2)

	n, err := rms.CountEvaluators(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
