package dispatch

import (
	"fmt"

	"github.com/ppiankov/taskgate/internal/classify"
	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/denylist"
	"github.com/ppiankov/taskgate/internal/sandbox"
)

// Components builds the classifier and guard described by cfg. The guard is
// rooted at root, which may differ from cfg.DataRoot on reload.
func Components(cfg *config.Config, root string) (*classify.Classifier, *sandbox.Guard, error) {
	weekday, err := cfg.Weekday()
	if err != nil {
		return nil, nil, err
	}
	c, err := classify.FromConfig(cfg.Classifier, weekday)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	dl, err := denylist.Load(cfg.Guard.DenylistPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load denylist: %w", err)
	}
	return c, sandbox.NewGuard(root, dl, cfg.Classifier.FoldCase), nil
}
