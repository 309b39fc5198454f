package hclcfg

import (
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/dispatchgrid/internal/capability"
	"github.com/vk/dispatchgrid/internal/model"
)

// Deployment is the merged, validated result of loading a configuration
// tree. It is the static input to application wiring.
type Deployment struct {
	Settings  Settings
	Taxonomy  capability.Taxonomy
	Agents    []Agent
	Workflows []*model.Workflow
}

// Settings are the scheduler tuning knobs.
type Settings struct {
	// MaxQueueDepth is the per-agent cap above which an agent stops being
	// available.
	MaxQueueDepth int
	// Workers bounds concurrent backend executions per dispatch batch.
	Workers int
	// MaxAlternatives bounds the runner-up agents recorded per decision.
	MaxAlternatives int
	// CycleInterval is the period of the scheduling loop.
	CycleInterval time.Duration
}

// DefaultSettings are applied when a deployment has no settings block.
func DefaultSettings() Settings {
	return Settings{
		MaxQueueDepth:   5,
		Workers:         4,
		MaxAlternatives: 4,
		CycleInterval:   3 * time.Second,
	}
}

// Agent is one roster entry, including optional simulated starting state for
// demo deployments.
type Agent struct {
	RoleID       string
	Level        model.Level
	Capabilities []string
	Skills       []string
	QueueDepth   int
	Health       model.Health
}

// fileSchema is the top-level structure of one .hcl file for decoding.
type fileSchema struct {
	Settings  *settingsBlock   `hcl:"settings,block"`
	Skills    []*skillBlock    `hcl:"skill,block"`
	Agents    []*agentBlock    `hcl:"agent,block"`
	Workflows []*workflowBlock `hcl:"workflow,block"`
}

type settingsBlock struct {
	MaxQueueDepth   *int    `hcl:"max_queue_depth,optional"`
	Workers         *int    `hcl:"workers,optional"`
	MaxAlternatives *int    `hcl:"max_alternatives,optional"`
	CycleInterval   *string `hcl:"cycle_interval,optional"`
}

type skillBlock struct {
	Name         string   `hcl:"name,label"`
	Capabilities []string `hcl:"capabilities"`
}

type agentBlock struct {
	RoleID       string   `hcl:"role_id,label"`
	Level        string   `hcl:"level"`
	Capabilities []string `hcl:"capabilities,optional"`
	Skills       []string `hcl:"skills,optional"`
	QueueDepth   *int     `hcl:"queue_depth,optional"`
	Health       *string  `hcl:"health,optional"`
}

type workflowBlock struct {
	ID    string       `hcl:"id,label"`
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	ID           string          `hcl:"id,label"`
	Capabilities []string        `hcl:"capabilities,optional"`
	Skills       []string        `hcl:"skills,optional"`
	Priority     *string         `hcl:"priority,optional"`
	DependsOn    []string        `hcl:"depends_on,optional"`
	TargetLevel  *string         `hcl:"target_level,optional"`
	Arguments    *argumentsBlock `hcl:"arguments,block"`
}

// argumentsBlock captures the step's arguments body raw; the loader
// evaluates its attributes into cty values handed through to the execution
// backend untouched.
type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
