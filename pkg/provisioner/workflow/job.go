// Package workflow compiles flow descriptors into workflow-engine job
// specs and submits them over HTTP.
package workflow

// JobSpec is the body submitted to the workflow engine's job API.
type JobSpec struct {
	UUID        string    `json:"uuid"`
	Project     string    `json:"project"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Paused      bool      `json:"paused"`
	Triggers    []Trigger `json:"triggers"`
	Tasks       []Task    `json:"tasks"`
}

// Trigger is one job trigger. Today only a cron trigger is ever produced.
type Trigger struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	Cron  string `json:"cron"`
}

// Task is one job task backed by a docker image.
type Task struct {
	Name    string   `json:"name"`
	Docker  Docker   `json:"docker"`
	Depends []string `json:"depends"`
}

// Docker is the docker invocation for a task.
type Docker struct {
	Image string   `json:"image"`
	Args  []string `json:"args"`
}

// primordialTime is the fixed trigger start timestamp: the engine schedules
// purely off the cron expression, so the start time itself is inert and
// fixed to a constant in the past.
const primordialTime = "2000-01-01T00:00:00Z"
