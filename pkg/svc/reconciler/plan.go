package reconciler

import (
	"fmt"
	"strings"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/fetcher"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
)

// Action is the API call an operation performs.
type Action int

const (
	// ActionCreate posts a new deployment.
	ActionCreate Action = iota
	// ActionPatch sends a merge patch to an existing deployment.
	ActionPatch
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionPatch:
		return "patch"
	default:
		return "unknown"
	}
}

// Operation is one API call and the changes it carries.
type Operation struct {
	Action  Action
	Changes []diff.Change
	// Body is the create document or the merge patch.
	Body tree.Tree
}

func (o Operation) String() string {
	paths := make([]string, 0, len(o.Changes))
	for _, change := range o.Changes {
		paths = append(paths, change.Op.Symbol()+change.Path.String())
	}

	return fmt.Sprintf("%s [%s]", o.Action, strings.Join(paths, ", "))
}

// Plan is the ordered list of operations for one deployment.
type Plan struct {
	Identity   v1alpha1.Identity
	Operations []Operation
}

// IsEmpty reports whether the plan makes no calls.
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Operations) == 0
}

// Changes returns the change records of all operations in order.
func (p *Plan) Changes() []diff.Change {
	if p == nil {
		return nil
	}

	var changes []diff.Change

	for _, op := range p.Operations {
		changes = append(changes, op.Changes...)
	}

	return changes
}

// NewPlan orders the changes of d for execution against live.
//
// A missing deployment gets one create operation holding every added leaf.
// An existing one gets one patch per change: adds first, then modifies,
// then removes, each group in path order. Removing the last key of an
// object removes the object too, unless the desired document keeps it.
func NewPlan(d *diff.Diff, live *fetcher.LiveState) (*Plan, error) {
	plan := &Plan{Identity: live.Identity}

	if d.IsEmpty() {
		return plan, nil
	}

	if !live.Exists {
		body := tree.Tree{}
		for _, change := range d.Filter(diff.OpAdd) {
			body.Set(change.Path, change.NewValue)
		}

		plan.Operations = []Operation{{
			Action:  ActionCreate,
			Changes: d.Filter(diff.OpAdd),
			Body:    body,
		}}

		return plan, nil
	}

	// simulated tracks the live document as the patches land
	simulated := live.Tree.Clone()

	for _, op := range []diff.Op{diff.OpAdd, diff.OpModify, diff.OpRemove} {
		for _, change := range d.Filter(op) {
			var patch tree.Tree

			if op == diff.OpRemove {
				patch = tree.Nest(removalPoint(simulated, d.Desired, change.Path), nil)
			} else {
				patch = tree.Nest(change.Path, change.NewValue)
			}

			next, err := tree.MergePatch(simulated, patch)
			if err != nil {
				return nil, err
			}

			simulated = next

			plan.Operations = append(plan.Operations, Operation{
				Action:  ActionPatch,
				Changes: []diff.Change{change},
				Body:    patch,
			})
		}
	}

	return plan, nil
}

// removalPoint widens the removal of path to the highest ancestor that the
// removal leaves empty and desired does not hold.
func removalPoint(doc, desired tree.Tree, path tree.Path) tree.Path {
	point := path

	for i := len(path) - 1; i > 0; i-- {
		value, _ := doc.Get(path[:i])

		obj, ok := value.(map[string]any)
		if !ok || !emptyWithout(obj, path[i]) {
			break
		}

		if _, kept := desired.Get(path[:i]); kept {
			break
		}

		point = path[:i]
	}

	return point
}

// emptyWithout reports whether obj holds nothing but key.
func emptyWithout(obj map[string]any, key string) bool {
	if len(obj) != 1 {
		return false
	}

	_, ok := obj[key]

	return ok
}
