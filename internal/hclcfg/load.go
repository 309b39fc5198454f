package hclcfg

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dispatchgrid/internal/capability"
	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/model"
)

// Load reads the deployment definition at path, which may be a single .hcl
// file or a directory searched recursively. Blocks from all files are merged
// into one Deployment and validated as a whole.
func Load(ctx context.Context, path string) (*Deployment, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findConfigFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found at %s", path)
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	parser := hclparse.NewParser()
	merged := &fileSchema{}
	var settingsSeen string
	for _, file := range files {
		parsed, err := parseFile(parser, file)
		if err != nil {
			return nil, err
		}
		if parsed.Settings != nil {
			if settingsSeen != "" {
				return nil, fmt.Errorf("duplicate settings block in %s (already defined in %s)", file, settingsSeen)
			}
			settingsSeen = file
			merged.Settings = parsed.Settings
		}
		merged.Skills = append(merged.Skills, parsed.Skills...)
		merged.Agents = append(merged.Agents, parsed.Agents...)
		merged.Workflows = append(merged.Workflows, parsed.Workflows...)
	}

	deployment, err := translate(ctx, merged)
	if err != nil {
		return nil, err
	}
	logger.Info("Deployment configuration loaded.",
		"agents", len(deployment.Agents),
		"skills", len(deployment.Taxonomy),
		"workflows", len(deployment.Workflows))
	return deployment, nil
}

// parseFile parses and decodes a single HCL file.
func parseFile(parser *hclparse.Parser, path string) (*fileSchema, error) {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	var parsed fileSchema
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", path, diags)
	}
	return &parsed, nil
}

// findConfigFiles resolves a path to the list of .hcl files it denotes.
func findConfigFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// translate converts the merged HCL schema into the validated domain model.
func translate(ctx context.Context, in *fileSchema) (*Deployment, error) {
	out := &Deployment{
		Settings: DefaultSettings(),
		Taxonomy: make(capability.Taxonomy),
	}

	if in.Settings != nil {
		if err := applySettings(&out.Settings, in.Settings); err != nil {
			return nil, err
		}
	}

	for _, skill := range in.Skills {
		if _, dup := out.Taxonomy[skill.Name]; dup {
			return nil, fmt.Errorf("skill %q defined twice", skill.Name)
		}
		out.Taxonomy[skill.Name] = skill.Capabilities
	}

	seenAgents := make(map[string]bool)
	for _, a := range in.Agents {
		if seenAgents[a.RoleID] {
			return nil, fmt.Errorf("agent %q defined twice", a.RoleID)
		}
		seenAgents[a.RoleID] = true

		agent, err := translateAgent(a)
		if err != nil {
			return nil, err
		}
		out.Agents = append(out.Agents, agent)
	}

	seenWorkflows := make(map[string]bool)
	for _, w := range in.Workflows {
		if seenWorkflows[w.ID] {
			return nil, fmt.Errorf("workflow %q defined twice", w.ID)
		}
		seenWorkflows[w.ID] = true

		wf, err := translateWorkflow(ctx, w)
		if err != nil {
			return nil, err
		}
		out.Workflows = append(out.Workflows, wf)
	}

	return out, nil
}

func applySettings(s *Settings, block *settingsBlock) error {
	if block.MaxQueueDepth != nil {
		if *block.MaxQueueDepth <= 0 {
			return fmt.Errorf("max_queue_depth must be positive, got %d", *block.MaxQueueDepth)
		}
		s.MaxQueueDepth = *block.MaxQueueDepth
	}
	if block.Workers != nil {
		if *block.Workers <= 0 {
			return fmt.Errorf("workers must be positive, got %d", *block.Workers)
		}
		s.Workers = *block.Workers
	}
	if block.MaxAlternatives != nil {
		if *block.MaxAlternatives <= 0 {
			return fmt.Errorf("max_alternatives must be positive, got %d", *block.MaxAlternatives)
		}
		s.MaxAlternatives = *block.MaxAlternatives
	}
	if block.CycleInterval != nil {
		d, err := time.ParseDuration(*block.CycleInterval)
		if err != nil {
			return fmt.Errorf("invalid cycle_interval %q: %w", *block.CycleInterval, err)
		}
		s.CycleInterval = d
	}
	return nil
}

func translateAgent(a *agentBlock) (Agent, error) {
	level, err := parseLevel(a.Level)
	if err != nil {
		return Agent{}, fmt.Errorf("agent %q: %w", a.RoleID, err)
	}

	agent := Agent{
		RoleID:       a.RoleID,
		Level:        level,
		Capabilities: a.Capabilities,
		Skills:       a.Skills,
		Health:       model.HealthHealthy,
	}
	if a.QueueDepth != nil {
		if *a.QueueDepth < 0 {
			return Agent{}, fmt.Errorf("agent %q: queue_depth must not be negative", a.RoleID)
		}
		agent.QueueDepth = *a.QueueDepth
	}
	if a.Health != nil {
		health, err := parseHealth(*a.Health)
		if err != nil {
			return Agent{}, fmt.Errorf("agent %q: %w", a.RoleID, err)
		}
		agent.Health = health
	}
	return agent, nil
}

func translateWorkflow(ctx context.Context, w *workflowBlock) (*model.Workflow, error) {
	wf := &model.Workflow{
		ID:     w.ID,
		Status: model.WorkflowActive,
	}

	seen := make(map[string]bool)
	for _, s := range w.Steps {
		if seen[s.ID] {
			return nil, fmt.Errorf("workflow %q: step %q defined twice", w.ID, s.ID)
		}
		seen[s.ID] = true

		step, err := translateStep(ctx, w.ID, s)
		if err != nil {
			return nil, err
		}
		wf.Steps = append(wf.Steps, step)
	}

	// Dangling depends_on references are load-time errors; at runtime a
	// missing dependency would silently pin the step as never-ready.
	for _, step := range wf.Steps {
		for _, depID := range step.DependsOn {
			if !seen[depID] {
				return nil, fmt.Errorf("workflow %q: step %q depends on unknown step %q", w.ID, step.ID, depID)
			}
		}
	}

	return wf, nil
}

func translateStep(ctx context.Context, workflowID string, s *stepBlock) (*model.Step, error) {
	step := &model.Step{
		ID:                   s.ID,
		Status:               model.StepPending,
		DependsOn:            s.DependsOn,
		RequiredCapabilities: s.Capabilities,
		RequiredSkills:       s.Skills,
		Priority:             model.PriorityMedium,
		CreatedAt:            time.Now(),
	}

	if s.Priority != nil {
		p, err := model.ParsePriority(*s.Priority)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", workflowID, s.ID, err)
		}
		step.Priority = p
	}
	if s.TargetLevel != nil {
		level, err := parseLevel(*s.TargetLevel)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", workflowID, s.ID, err)
		}
		step.TargetLevel = level
	}
	if s.Arguments != nil {
		args, err := evalArguments(ctx, s.Arguments.Body)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", workflowID, s.ID, err)
		}
		step.Arguments = args
	}

	return step, nil
}

// evalArguments evaluates every attribute of an arguments body into a
// concrete cty value. Arguments are static configuration; no eval context is
// provided, so references to other blocks are rejected at load time.
func evalArguments(ctx context.Context, body hcl.Body) (map[string]cty.Value, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid arguments block: %w", diags)
	}
	if len(attrs) == 0 {
		return nil, nil
	}

	logger := ctxlog.FromContext(ctx)
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("argument %q: %w", name, diags)
		}
		out[name] = val
	}
	logger.Debug("Evaluated step arguments.", "count", len(out))
	return out, nil
}

func parseLevel(s string) (model.Level, error) {
	switch model.Level(s) {
	case model.LevelWorker, model.LevelDirector, model.LevelVP:
		return model.Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q (want worker, director or vp)", s)
}

func parseHealth(s string) (model.Health, error) {
	switch model.Health(s) {
	case model.HealthHealthy, model.HealthDegraded, model.HealthUnresponsive:
		return model.Health(s), nil
	}
	return "", fmt.Errorf("unknown health %q (want healthy, degraded or unresponsive)", s)
}
