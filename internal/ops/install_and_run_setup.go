package ops

import (
	"context"
	"fmt"

	"github.com/ppiankov/taskgate/internal/model"
)

// InstallAndRunSetup makes sure the runner tool is installed, then runs the
// setup script with the operator identity and the data root.
type InstallAndRunSetup struct {
	root     string
	tool     string
	install  []string
	script   string
	identity func() string
	runner   Runner
}

// NewInstallAndRunSetup creates the operation. identity is called on each
// run so environment changes are picked up.
func NewInstallAndRunSetup(root, tool string, install []string, script string, identity func() string, runner Runner) *InstallAndRunSetup {
	return &InstallAndRunSetup{
		root:     root,
		tool:     tool,
		install:  install,
		script:   script,
		identity: identity,
		runner:   runner,
	}
}

func (o *InstallAndRunSetup) ID() model.OperationID { return model.InstallAndRunSetup }

func (o *InstallAndRunSetup) Targets() []string { return []string{o.root} }

func (o *InstallAndRunSetup) Run(ctx context.Context) (string, error) {
	if _, err := o.runner.LookPath(o.tool); err != nil {
		if len(o.install) == 0 {
			return "", fmt.Errorf("%s not found and no install command configured", o.tool)
		}
		if _, err := o.runner.Run(ctx, o.root, o.install[0], o.install[1:]...); err != nil {
			return "", fmt.Errorf("install %s: %w", o.tool, err)
		}
	}

	id := o.identity()
	if id == "" {
		return "", fmt.Errorf("no identity configured")
	}
	if _, err := o.runner.Run(ctx, o.root, o.tool, "run", o.script, id, "--root", o.root); err != nil {
		return "", fmt.Errorf("run setup script: %w", err)
	}
	return fmt.Sprintf("Setup script completed for %s", id), nil
}
