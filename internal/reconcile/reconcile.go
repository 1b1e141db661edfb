// Package reconcile turns an agent settings submission into the sequence of
// remote calls that brings the agent's bindings in line with the form.
//
// Tools and datasources are sets: identities only in the new selection are
// bound, identities only in the original are unbound, and shared identities
// are left alone. The LLM binding is replaced wholesale, and only when the
// selected provider differs from the current one.
//
// Calls run one at a time in plan order. The first failure stops the run;
// nothing already applied is rolled back.
package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/forms"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// Kind names the remote call an Op issues.
type Kind string

const (
	OpPatchAgent       Kind = "patch_agent"
	OpDeleteLLM        Kind = "delete_llm"
	OpCreateLLM        Kind = "create_llm"
	OpCreateTool       Kind = "create_tool"
	OpDeleteTool       Kind = "delete_tool"
	OpCreateDatasource Kind = "create_datasource"
	OpDeleteDatasource Kind = "delete_datasource"
)

// Op is one planned remote call.
type Op struct {
	Kind Kind `json:"kind"`
	// ID is the bound resource identity (empty for PatchAgent).
	ID string `json:"id,omitempty"`
	// Payload is the PatchAgent body.
	Payload map[string]any `json:"-"`
}

func (o Op) String() string {
	if o.ID == "" {
		return string(o.Kind)
	}
	return string(o.Kind) + "(" + o.ID + ")"
}

// StepError reports the op that failed and what had been applied before it.
type StepError struct {
	Step    Op
	Applied []Op
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed after %d applied: %v", e.Step, len(e.Applied), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Diff returns the identities to bind (in next, not in original) and to
// unbind (in original, not in next). Both keep input order; duplicates and
// empty identities are ignored.
func Diff(original, next []string) (create, remove []string) {
	orig := toSet(original)
	want := toSet(next)
	seen := make(map[string]bool, len(next))
	for _, id := range next {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if !orig[id] {
			create = append(create, id)
		}
	}
	seen = make(map[string]bool, len(original))
	for _, id := range original {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if !want[id] {
			remove = append(remove, id)
		}
	}
	return create, remove
}

// Plan builds the ordered op list for a settings submission:
// patch agent, LLM replace, tool creates, tool deletes, datasource creates,
// datasource deletes.
//
// llms is the caller's configured LLM list, used to find the LLM for the
// selected provider. A provider with no configured LLM leaves the binding
// untouched.
func Plan(agent *models.Agent, form *forms.SettingsForm, llms []models.LLM) []Op {
	ops := []Op{{Kind: OpPatchAgent, Payload: form.AgentPatch()}}

	if form.LLMProvider != "" {
		current := agent.CurrentLLM()
		if current == nil || current.Provider != form.LLMProvider {
			if next := findLLM(llms, form.LLMProvider); next != nil {
				if current != nil {
					ops = append(ops, Op{Kind: OpDeleteLLM, ID: current.ID})
				}
				ops = append(ops, Op{Kind: OpCreateLLM, ID: next.ID})
			}
		}
	}

	create, remove := Diff(agent.ToolIDs(), form.ToolIDs)
	for _, id := range create {
		ops = append(ops, Op{Kind: OpCreateTool, ID: id})
	}
	for _, id := range remove {
		ops = append(ops, Op{Kind: OpDeleteTool, ID: id})
	}

	create, remove = Diff(agent.DatasourceIDs(), form.DatasourceIDs)
	for _, id := range create {
		ops = append(ops, Op{Kind: OpCreateDatasource, ID: id})
	}
	for _, id := range remove {
		ops = append(ops, Op{Kind: OpDeleteDatasource, ID: id})
	}
	return ops
}

// BindingOps filters out the PatchAgent op, leaving only binding changes.
func BindingOps(ops []Op) []Op {
	out := make([]Op, 0, len(ops))
	for _, op := range ops {
		if op.Kind != OpPatchAgent {
			out = append(out, op)
		}
	}
	return out
}

// Apply issues ops sequentially against agentID. It returns the ops that
// succeeded; on failure the error is a *StepError.
func Apply(ctx context.Context, c contracts.AgentBindingClient, agentID string, ops []Op) ([]Op, error) {
	applied := make([]Op, 0, len(ops))
	for _, op := range ops {
		if err := apply(ctx, c, agentID, op); err != nil {
			log.Warn().
				Err(err).
				Str("agent_id", agentID).
				Str("op", op.String()).
				Int("applied", len(applied)).
				Msg("Agent settings reconciliation stopped")
			return applied, &StepError{Step: op, Applied: applied, Err: err}
		}
		log.Info().
			Str("agent_id", agentID).
			Str("kind", string(op.Kind)).
			Str("id", op.ID).
			Msg("Agent binding updated")
		applied = append(applied, op)
	}
	return applied, nil
}

// enveloped is satisfied by every superagent.Response[T].
type enveloped interface {
	OK() bool
	Message() string
}

func apply(ctx context.Context, c contracts.AgentBindingClient, agentID string, op Op) error {
	var (
		resp enveloped
		err  error
	)
	switch op.Kind {
	case OpPatchAgent:
		resp, err = c.PatchAgent(ctx, agentID, op.Payload)
	case OpDeleteLLM:
		resp, err = c.DeleteAgentLLM(ctx, agentID, op.ID)
	case OpCreateLLM:
		resp, err = c.CreateAgentLLM(ctx, agentID, op.ID)
	case OpCreateTool:
		resp, err = c.CreateAgentTool(ctx, agentID, op.ID)
	case OpDeleteTool:
		resp, err = c.DeleteAgentTool(ctx, agentID, op.ID)
	case OpCreateDatasource:
		resp, err = c.CreateAgentDatasource(ctx, agentID, op.ID)
	case OpDeleteDatasource:
		resp, err = c.DeleteAgentDatasource(ctx, agentID, op.ID)
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
	if err != nil {
		return err
	}
	// Without strict status the envelope is not an error; it is only logged.
	if resp != nil && !resp.OK() {
		log.Warn().
			Str("agent_id", agentID).
			Str("op", op.String()).
			Str("message", resp.Message()).
			Msg("Remote API did not confirm binding change")
	}
	return nil
}

func findLLM(llms []models.LLM, provider models.LLMProvider) *models.LLM {
	for i := range llms {
		if llms[i].Provider == provider {
			return &llms[i]
		}
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
