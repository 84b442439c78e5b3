// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"github.com/diffeo/go-hps/hps"
)

// ProjectAPI is the API of a single project: its job definitions,
// jobs, tasks, files, and the definitions they refer to.
type ProjectAPI struct {
	*Endpoint
	ProjectID string
}

// Project returns the API of the project with the given id.
func (c *Client) Project(projectID string) (*ProjectAPI, error) {
	e, err := c.NewEndpoint(projectTemplate, map[string]interface{}{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	return &ProjectAPI{Endpoint: e, ProjectID: projectID}, nil
}

// GetJobDefinitions lists job definitions.
func (api *ProjectAPI) GetJobDefinitions(ctx context.Context, q Query) ([]*hps.JobDefinition, error) {
	return ListObjects[*hps.JobDefinition](ctx, api.Endpoint, q)
}

// CreateJobDefinitions creates job definitions.
func (api *ProjectAPI) CreateJobDefinitions(ctx context.Context, objs []*hps.JobDefinition) ([]*hps.JobDefinition, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// UpdateJobDefinitions updates job definitions.
func (api *ProjectAPI) UpdateJobDefinitions(ctx context.Context, objs []*hps.JobDefinition) ([]*hps.JobDefinition, error) {
	return UpdateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteJobDefinitions deletes job definitions.
func (api *ProjectAPI) DeleteJobDefinitions(ctx context.Context, objs []*hps.JobDefinition) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// CopyJobDefinitions starts copying job definitions and returns the
// operation id.
func (api *ProjectAPI) CopyJobDefinitions(ctx context.Context, objs []*hps.JobDefinition) (string, error) {
	return CopyObjects(ctx, api.Endpoint, objs)
}

// GetJobs lists jobs.
func (api *ProjectAPI) GetJobs(ctx context.Context, q Query) ([]*hps.Job, error) {
	return ListObjects[*hps.Job](ctx, api.Endpoint, q)
}

// GetJob retrieves a job by id, or nil if there is none.
func (api *ProjectAPI) GetJob(ctx context.Context, id string) (*hps.Job, error) {
	return GetObject[*hps.Job](ctx, api.Endpoint, id, nil)
}

// CreateJobs creates jobs.
func (api *ProjectAPI) CreateJobs(ctx context.Context, objs []*hps.Job) ([]*hps.Job, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// UpdateJobs updates jobs.
func (api *ProjectAPI) UpdateJobs(ctx context.Context, objs []*hps.Job) ([]*hps.Job, error) {
	return UpdateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteJobs deletes jobs.
func (api *ProjectAPI) DeleteJobs(ctx context.Context, objs []*hps.Job) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// CopyJobs copies jobs, waits for the copy to finish, and returns the
// ids of the new jobs.
func (api *ProjectAPI) CopyJobs(ctx context.Context, objs []*hps.Job, p *Poller) ([]string, error) {
	return CopyObjectsAndWait(ctx, api.Endpoint, objs, p)
}

// GetTasks lists tasks.
func (api *ProjectAPI) GetTasks(ctx context.Context, q Query) ([]*hps.Task, error) {
	return ListObjects[*hps.Task](ctx, api.Endpoint, q)
}

// UpdateTasks updates tasks.
func (api *ProjectAPI) UpdateTasks(ctx context.Context, objs []*hps.Task) ([]*hps.Task, error) {
	return UpdateObjects(ctx, api.Endpoint, objs, nil)
}

// GetTaskDefinitions lists task definitions.
func (api *ProjectAPI) GetTaskDefinitions(ctx context.Context, q Query) ([]*hps.TaskDefinition, error) {
	return ListObjects[*hps.TaskDefinition](ctx, api.Endpoint, q)
}

// CreateTaskDefinitions creates task definitions.
func (api *ProjectAPI) CreateTaskDefinitions(ctx context.Context, objs []*hps.TaskDefinition) ([]*hps.TaskDefinition, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// UpdateTaskDefinitions updates task definitions.
func (api *ProjectAPI) UpdateTaskDefinitions(ctx context.Context, objs []*hps.TaskDefinition) ([]*hps.TaskDefinition, error) {
	return UpdateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteTaskDefinitions deletes task definitions.
func (api *ProjectAPI) DeleteTaskDefinitions(ctx context.Context, objs []*hps.TaskDefinition) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// CopyTaskDefinitions starts copying task definitions and returns the
// operation id.
func (api *ProjectAPI) CopyTaskDefinitions(ctx context.Context, objs []*hps.TaskDefinition) (string, error) {
	return CopyObjects(ctx, api.Endpoint, objs)
}

// GetFiles lists file metadata.
func (api *ProjectAPI) GetFiles(ctx context.Context, q Query) ([]*hps.File, error) {
	return ListObjects[*hps.File](ctx, api.Endpoint, q)
}

// CreateFiles registers file metadata.
func (api *ProjectAPI) CreateFiles(ctx context.Context, objs []*hps.File) ([]*hps.File, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteFiles deletes files.
func (api *ProjectAPI) DeleteFiles(ctx context.Context, objs []*hps.File) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// GetParameterDefinitions lists parameter definitions.
func (api *ProjectAPI) GetParameterDefinitions(ctx context.Context, q Query) ([]*hps.ParameterDefinition, error) {
	return ListObjects[*hps.ParameterDefinition](ctx, api.Endpoint, q)
}

// CreateParameterDefinitions creates parameter definitions.
func (api *ProjectAPI) CreateParameterDefinitions(ctx context.Context, objs []*hps.ParameterDefinition) ([]*hps.ParameterDefinition, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteParameterDefinitions deletes parameter definitions.
func (api *ProjectAPI) DeleteParameterDefinitions(ctx context.Context, objs []*hps.ParameterDefinition) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// GetParameterMappings lists parameter mappings.
func (api *ProjectAPI) GetParameterMappings(ctx context.Context, q Query) ([]*hps.ParameterMapping, error) {
	return ListObjects[*hps.ParameterMapping](ctx, api.Endpoint, q)
}

// CreateParameterMappings creates parameter mappings.
func (api *ProjectAPI) CreateParameterMappings(ctx context.Context, objs []*hps.ParameterMapping) ([]*hps.ParameterMapping, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteParameterMappings deletes parameter mappings.
func (api *ProjectAPI) DeleteParameterMappings(ctx context.Context, objs []*hps.ParameterMapping) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// GetJobSelections lists job selections.
func (api *ProjectAPI) GetJobSelections(ctx context.Context, q Query) ([]*hps.JobSelection, error) {
	return ListObjects[*hps.JobSelection](ctx, api.Endpoint, q)
}

// CreateJobSelections creates job selections.
func (api *ProjectAPI) CreateJobSelections(ctx context.Context, objs []*hps.JobSelection) ([]*hps.JobSelection, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteJobSelections deletes job selections.
func (api *ProjectAPI) DeleteJobSelections(ctx context.Context, objs []*hps.JobSelection) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// GetAlgorithms lists design exploration algorithms.
func (api *ProjectAPI) GetAlgorithms(ctx context.Context, q Query) ([]*hps.Algorithm, error) {
	return ListObjects[*hps.Algorithm](ctx, api.Endpoint, q)
}

// CreateAlgorithms creates design exploration algorithms.
func (api *ProjectAPI) CreateAlgorithms(ctx context.Context, objs []*hps.Algorithm) ([]*hps.Algorithm, error) {
	return CreateObjects(ctx, api.Endpoint, objs, nil)
}

// DeleteAlgorithms deletes design exploration algorithms.
func (api *ProjectAPI) DeleteAlgorithms(ctx context.Context, objs []*hps.Algorithm) error {
	return DeleteObjects(ctx, api.Endpoint, objs)
}

// GetPermissions lists the project's permissions.
func (api *ProjectAPI) GetPermissions(ctx context.Context) ([]*hps.Permission, error) {
	return ListObjects[*hps.Permission](ctx, api.Endpoint, nil)
}

// UpdatePermissions replaces the project's permissions.
func (api *ProjectAPI) UpdatePermissions(ctx context.Context, objs []*hps.Permission) ([]*hps.Permission, error) {
	return UpdateObjects(ctx, api.Endpoint, objs, nil)
}
