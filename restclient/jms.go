// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"github.com/diffeo/go-hps/hps"
	"time"
)

const (
	jmsTemplate     = "{+url}/jms/api/v1"
	projectTemplate = "{+url}/jms/api/v1/projects/{project_id}"
	rmsTemplate     = "{+url}/rms/api/v1"
)

// JMSAPI is the job management API: projects, task definition
// templates, and operations.
type JMSAPI struct {
	*Endpoint
}

// JMS returns the job management API of the service.
func (c *Client) JMS() (*JMSAPI, error) {
	e, err := c.NewEndpoint(jmsTemplate, nil)
	if err != nil {
		return nil, err
	}
	return &JMSAPI{e}, nil
}

// GetProjects lists projects.
func (api *JMSAPI) GetProjects(ctx context.Context, q Query) ([]*hps.Project, error) {
	return ListObjects[*hps.Project](ctx, api.Endpoint, q)
}

// GetProject retrieves a project by id, or nil if there is none.
func (api *JMSAPI) GetProject(ctx context.Context, id string) (*hps.Project, error) {
	return GetObject[*hps.Project](ctx, api.Endpoint, id, nil)
}

// GetProjectByName retrieves the project with a given name, or nil if
// there is none.
func (api *JMSAPI) GetProjectByName(ctx context.Context, name string) (*hps.Project, error) {
	projects, err := api.GetProjects(ctx, Query{}.Filter("name", name))
	if err != nil || len(projects) == 0 {
		return nil, err
	}
	return projects[0], nil
}

// CreateProject creates a project.
func (api *JMSAPI) CreateProject(ctx context.Context, project *hps.Project) (*hps.Project, error) {
	created, err := CreateObjects(ctx, api.Endpoint, []*hps.Project{project}, nil)
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// UpdateProject updates a project.
func (api *JMSAPI) UpdateProject(ctx context.Context, project *hps.Project) (*hps.Project, error) {
	updated, err := UpdateObjects(ctx, api.Endpoint, []*hps.Project{project}, nil)
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// DeleteProject deletes a project and everything in it.
func (api *JMSAPI) DeleteProject(ctx context.Context, project *hps.Project) error {
	return DeleteObjects(ctx, api.Endpoint, []*hps.Project{project})
}

// CopyProjects starts copying projects and returns the operation id.
func (api *JMSAPI) CopyProjects(ctx context.Context, projects []*hps.Project) (string, error) {
	return CopyObjects(ctx, api.Endpoint, projects)
}

// GetTaskDefinitionTemplates lists task definition templates.
func (api *JMSAPI) GetTaskDefinitionTemplates(ctx context.Context, q Query) ([]*hps.TaskDefinitionTemplate, error) {
	return ListObjects[*hps.TaskDefinitionTemplate](ctx, api.Endpoint, q)
}

// CreateTaskDefinitionTemplates creates task definition templates.
func (api *JMSAPI) CreateTaskDefinitionTemplates(ctx context.Context, templates []*hps.TaskDefinitionTemplate) ([]*hps.TaskDefinitionTemplate, error) {
	return CreateObjects(ctx, api.Endpoint, templates, nil)
}

// UpdateTaskDefinitionTemplates updates task definition templates.
func (api *JMSAPI) UpdateTaskDefinitionTemplates(ctx context.Context, templates []*hps.TaskDefinitionTemplate) ([]*hps.TaskDefinitionTemplate, error) {
	return UpdateObjects(ctx, api.Endpoint, templates, nil)
}

// DeleteTaskDefinitionTemplates deletes task definition templates.
func (api *JMSAPI) DeleteTaskDefinitionTemplates(ctx context.Context, templates []*hps.TaskDefinitionTemplate) error {
	return DeleteObjects(ctx, api.Endpoint, templates)
}

// CopyTaskDefinitionTemplates starts copying task definition
// templates and returns the operation id.
func (api *JMSAPI) CopyTaskDefinitionTemplates(ctx context.Context, templates []*hps.TaskDefinitionTemplate) (string, error) {
	return CopyObjects(ctx, api.Endpoint, templates)
}

// GetOperations lists operations.
func (api *JMSAPI) GetOperations(ctx context.Context, q Query) ([]*hps.Operation, error) {
	return ListObjects[*hps.Operation](ctx, api.Endpoint, q)
}

// WaitForOperation waits for an operation to finish with the default
// poller settings, giving up after timeout if it is not zero.
func (api *JMSAPI) WaitForOperation(ctx context.Context, id string, timeout time.Duration) (*hps.Operation, error) {
	p := Poller{MaxElapsed: timeout, Logger: api.client.logger, Clock: api.client.clock}
	return p.Wait(ctx, api.Endpoint, id)
}
