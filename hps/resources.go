// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

// Entity holds the fields every stored resource carries.  Embed it in
// a resource type to get ObjectID().
type Entity struct {
	// ID is assigned by the server on creation.
	ID Optional[string] `json:"id"`

	CreationTime     Optional[Timestamp] `json:"creation_time"`
	ModificationTime Optional[Timestamp] `json:"modification_time"`
	CreatedBy        Optional[string]    `json:"created_by"`
	ModifiedBy       Optional[string]    `json:"modified_by"`
}

// ObjectID returns the server-assigned id, or an empty string.
func (e *Entity) ObjectID() string {
	if e == nil {
		return ""
	}
	return e.ID.ValueOr("")
}

// Dict is an arbitrary JSON object.
type Dict = map[string]interface{}

// Project is the top-level container for job definitions and jobs.
type Project struct {
	Entity
	Name       Optional[string] `json:"name"`
	Active     Optional[bool]   `json:"active"`
	Priority   Optional[int]    `json:"priority"`
	Statistics Optional[Dict]   `json:"statistics"`
}

// ObjType returns "Project".
func (*Project) ObjType() string { return "Project" }

// JobDefinition ties together the parameters and tasks that make up
// a job.
type JobDefinition struct {
	Entity
	Name                   Optional[string]   `json:"name"`
	Active                 Optional[bool]     `json:"active"`
	ClientHash             Optional[string]   `json:"client_hash"`
	ParameterDefinitionIDs Optional[[]string] `json:"parameter_definition_ids"`
	ParameterMappingIDs    Optional[[]string] `json:"parameter_mapping_ids"`
	TaskDefinitionIDs      Optional[[]string] `json:"task_definition_ids"`
	FitnessDefinition      Optional[Dict]     `json:"fitness_definition"`
}

// ObjType returns "JobDefinition".
func (*JobDefinition) ObjType() string { return "JobDefinition" }

// Eval status values shared by jobs and tasks.
const (
	StatusInactive    = "inactive"
	StatusPending     = "pending"
	StatusPrologue    = "prolog"
	StatusRunning     = "running"
	StatusEvaluated   = "evaluated"
	StatusFailed      = "failed"
	StatusAborted     = "aborted"
	StatusTimeout     = "timeout"
	StatusSkipped     = "skipped"
	StatusUploading   = "uploading"
	StatusDownloading = "downloading"
)

// Job is one design point: a set of parameter values evaluated by
// running the job definition's tasks.
type Job struct {
	Entity
	Name                          Optional[string]             `json:"name"`
	EvalStatus                    Optional[string]             `json:"eval_status"`
	JobDefinitionID               Optional[string]             `json:"job_definition_id"`
	Priority                      Optional[int]                `json:"priority"`
	Values                        Optional[Dict]               `json:"values"`
	Fitness                       Optional[float64]            `json:"fitness"`
	FitnessTermValues             Optional[map[string]float64] `json:"fitness_term_values"`
	Note                          Optional[string]             `json:"note"`
	Creator                       Optional[string]             `json:"creator"`
	ExecutedTaskDefinitionLevel   Optional[int]                `json:"executed_task_definition_level"`
	ElapsedWallTime               Optional[float64]            `json:"elapsed_wall_time"`
	HostIDs                       Optional[[]string]           `json:"host_ids"`
	FileIDs                       Optional[[]string]           `json:"file_ids"`
	MaxExecutionTimeExceededLevel Optional[int]                `json:"max_execution_time_exceeded_level"`
}

// ObjType returns "Job".
func (*Job) ObjType() string { return "Job" }

// Task is the execution of one task definition for one job.
type Task struct {
	Entity
	EvalStatus             Optional[string]    `json:"eval_status"`
	TraceID                Optional[string]    `json:"trace_id"`
	ElapsedTime            Optional[float64]   `json:"elapsed_time"`
	JobID                  Optional[string]    `json:"job_id"`
	TaskDefinitionID       Optional[string]    `json:"task_definition_id"`
	TaskDefinitionSnapshot Optional[Dict]      `json:"task_definition_snapshot"`
	ExecutedCommand        Optional[string]    `json:"executed_command"`
	HostID                 Optional[string]    `json:"host_id"`
	InputFileIDs           Optional[[]string]  `json:"input_file_ids"`
	OutputFileIDs          Optional[[]string]  `json:"output_file_ids"`
	InheritedFileIDs       Optional[[]string]  `json:"inherited_file_ids"`
	CustomData             Optional[Dict]      `json:"custom_data"`
	PrologTime             Optional[Timestamp] `json:"prolog_time"`
	RunningTime            Optional[Timestamp] `json:"running_time"`
	FinishedTime           Optional[Timestamp] `json:"finished_time"`
}

// ObjType returns "Task".
func (*Task) ObjType() string { return "Task" }

// TaskDefinition describes a command to run, its inputs and outputs,
// and its resource requirements.
type TaskDefinition struct {
	Entity
	Name                 Optional[string]   `json:"name"`
	ExecutionCommand     Optional[string]   `json:"execution_command"`
	UseExecutionScript   Optional[bool]     `json:"use_execution_script"`
	ExecutionScriptID    Optional[string]   `json:"execution_script_id"`
	ExecutionLevel       Optional[int]      `json:"execution_level"`
	ExecutionContext     Optional[Dict]     `json:"execution_context"`
	Environment          Optional[Dict]     `json:"environment"`
	MaxExecutionTime     Optional[float64]  `json:"max_execution_time"`
	NumTrials            Optional[int]      `json:"num_trials"`
	StoreOutput          Optional[bool]     `json:"store_output"`
	InputFileIDs         Optional[[]string] `json:"input_file_ids"`
	OutputFileIDs        Optional[[]string] `json:"output_file_ids"`
	SuccessCriteria      Optional[Dict]     `json:"success_criteria"`
	Software             Optional[[]Dict]   `json:"software_requirements"`
	ResourceRequirements Optional[Dict]     `json:"resource_requirements"`
}

// ObjType returns "TaskDefinition".
func (*TaskDefinition) ObjType() string { return "TaskDefinition" }

// TaskDefinitionTemplate is a reusable, project-independent task
// definition.
type TaskDefinitionTemplate struct {
	Entity
	Name                 Optional[string] `json:"name"`
	Version              Optional[string] `json:"version"`
	Description          Optional[string] `json:"description"`
	ExecutionCommand     Optional[string] `json:"execution_command"`
	ExecutionContext     Optional[Dict]   `json:"execution_context"`
	Environment          Optional[Dict]   `json:"environment"`
	Software             Optional[[]Dict] `json:"software_requirements"`
	ResourceRequirements Optional[Dict]   `json:"resource_requirements"`
	InputFiles           Optional[[]Dict] `json:"input_files"`
	OutputFiles          Optional[[]Dict] `json:"output_files"`
}

// ObjType returns "TaskDefinitionTemplate".
func (*TaskDefinitionTemplate) ObjType() string { return "TaskDefinitionTemplate" }

// File is the metadata of a file stored for a project.  Contents are
// transferred separately.
type File struct {
	Entity
	Name           Optional[string]    `json:"name"`
	Type           Optional[string]    `json:"type"`
	StorageID      Optional[string]    `json:"storage_id"`
	Size           Optional[int64]     `json:"size"`
	Hash           Optional[string]    `json:"hash"`
	Expiry         Optional[Timestamp] `json:"expiry_time"`
	Format         Optional[string]    `json:"format"`
	EvaluationPath Optional[string]    `json:"evaluation_path"`
	Monitor        Optional[bool]      `json:"monitor"`
	Collect        Optional[bool]      `json:"collect"`
	ReferenceID    Optional[string]    `json:"reference_id"`
}

// ObjType returns "File".
func (*File) ObjType() string { return "File" }

// ParameterDefinition declares one job parameter.  Type is one of
// "float", "int", "bool", or "string"; the bounds only apply to the
// numeric types.
type ParameterDefinition struct {
	Entity
	Name        Optional[string]        `json:"name"`
	Type        Optional[string]        `json:"type"`
	Mode        Optional[string]        `json:"mode"`
	Default     Optional[interface{}]   `json:"default"`
	Lower       Optional[float64]       `json:"lower_limit"`
	Upper       Optional[float64]       `json:"upper_limit"`
	Step        Optional[float64]       `json:"step"`
	ValueList   Optional[[]interface{}] `json:"value_list"`
	Units       Optional[string]        `json:"units"`
	Description Optional[string]        `json:"description"`
}

// ObjType returns "ParameterDefinition".
func (*ParameterDefinition) ObjType() string { return "ParameterDefinition" }

// ParameterMapping locates a parameter value inside an input or
// output file.
type ParameterMapping struct {
	Entity
	Line                   Optional[int]    `json:"line"`
	Column                 Optional[int]    `json:"column"`
	KeyString              Optional[string] `json:"key_string"`
	Float                  Optional[bool]   `json:"float_field"`
	Width                  Optional[int]    `json:"width"`
	Precision              Optional[int]    `json:"precision"`
	Tokenize               Optional[bool]   `json:"tokenize"`
	Decimal                Optional[string] `json:"decimal_symbol"`
	FileID                 Optional[string] `json:"file_id"`
	ParameterDefinitionID  Optional[string] `json:"parameter_definition_id"`
	TaskDefinitionProperty Optional[string] `json:"task_definition_property"`
}

// ObjType returns "ParameterMapping".
func (*ParameterMapping) ObjType() string { return "ParameterMapping" }

// JobSelection is a named group of jobs.
type JobSelection struct {
	Entity
	Name        Optional[string]   `json:"name"`
	AlgorithmID Optional[string]   `json:"algorithm_id"`
	Jobs        Optional[[]string] `json:"jobs"`
}

// ObjType returns "JobSelection".
func (*JobSelection) ObjType() string { return "JobSelection" }

// Algorithm records a design exploration algorithm and the jobs it
// generated.
type Algorithm struct {
	Entity
	Name             Optional[string]   `json:"name"`
	Description      Optional[string]   `json:"description"`
	Version          Optional[string]   `json:"version"`
	Data             Optional[string]   `json:"data"`
	JobIDs           Optional[[]string] `json:"jobs"`
	JobDefinitionIDs Optional[[]string] `json:"job_definition_ids"`
}

// ObjType returns "Algorithm".
func (*Algorithm) ObjType() string { return "Algorithm" }

// Evaluator is a worker process registered with the resource
// management service.
type Evaluator struct {
	Entity
	Name            Optional[string]    `json:"name"`
	HostID          Optional[string]    `json:"host_id"`
	Hostname        Optional[string]    `json:"hostname"`
	Platform        Optional[string]    `json:"platform"`
	TaskManagerType Optional[string]    `json:"task_manager_type"`
	Version         Optional[string]    `json:"build_info"`
	LastModified    Optional[Timestamp] `json:"last_modified"`
	ConfigurationID Optional[string]    `json:"configuration_id"`
}

// ObjType returns "Evaluator".
func (*Evaluator) ObjType() string { return "Evaluator" }

// Permission grants a user or group a role on a project.  Permissions
// have no id of their own.
type Permission struct {
	Entity
	PermissionType Optional[string] `json:"permission_type"`
	ValueID        Optional[string] `json:"value_id"`
	ValueName      Optional[string] `json:"value_name"`
	Role           Optional[string] `json:"role"`
}

// ObjType returns "Permission".
func (*Permission) ObjType() string { return "Permission" }

// Operation is a server-side handle for a long-running action such as
// a copy, archive, or restore.  Clients only ever read operations.
type Operation struct {
	Entity
	Name      Optional[string]    `json:"name"`
	Target    Optional[[]string]  `json:"target"`
	Finished  Optional[bool]      `json:"finished"`
	Succeeded Optional[bool]      `json:"succeeded"`
	Progress  Optional[float64]   `json:"progress"`
	Status    Optional[string]    `json:"status"`
	Result    Optional[Dict]      `json:"result"`
	Messages  Optional[[]Dict]    `json:"messages"`
	StartTime Optional[Timestamp] `json:"start_time"`
	EndTime   Optional[Timestamp] `json:"end_time"`
}

// ObjType returns "Operation".
func (*Operation) ObjType() string { return "Operation" }

// Done reports whether the operation has finished and, if so,
// whether it succeeded.  A finished operation with no succeeded flag
// counts as failed.
func (op *Operation) Done() (finished, succeeded bool) {
	finished = op.Finished.ValueOr(false)
	if finished {
		succeeded = op.Succeeded.ValueOr(false)
	}
	return
}

func init() {
	register(Descriptor{Type: "Project", Collection: "projects", New: func() Object { return &Project{} }})
	register(Descriptor{Type: "JobDefinition", Collection: "job_definitions", New: func() Object { return &JobDefinition{} }})
	register(Descriptor{Type: "Job", Collection: "jobs", New: func() Object { return &Job{} }})
	register(Descriptor{Type: "Task", Collection: "tasks", New: func() Object { return &Task{} }})
	register(Descriptor{Type: "TaskDefinition", Collection: "task_definitions", New: func() Object { return &TaskDefinition{} }})
	register(Descriptor{Type: "TaskDefinitionTemplate", Collection: "task_definition_templates", New: func() Object { return &TaskDefinitionTemplate{} }})
	register(Descriptor{Type: "File", Collection: "files", New: func() Object { return &File{} }})
	register(Descriptor{Type: "ParameterDefinition", Collection: "parameter_definitions", New: func() Object { return &ParameterDefinition{} }})
	register(Descriptor{Type: "ParameterMapping", Collection: "parameter_mappings", New: func() Object { return &ParameterMapping{} }})
	register(Descriptor{Type: "JobSelection", Collection: "job_selections", New: func() Object { return &JobSelection{} }})
	register(Descriptor{Type: "Algorithm", Collection: "algorithms", New: func() Object { return &Algorithm{} }})
	register(Descriptor{Type: "Evaluator", Collection: "evaluators", New: func() Object { return &Evaluator{} }})
	register(Descriptor{Type: "Permission", Collection: "permissions", New: func() Object { return &Permission{} }})
	register(Descriptor{Type: "Operation", Collection: "operations", New: func() Object { return &Operation{} }})
}
