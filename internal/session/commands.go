package session

import (
	"fmt"

	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/parser"
)

// Reply is what one play command produced.
type Reply struct {
	Lines []string
	// Injection is set by /check: the text to hand to the AI as the player's turn.
	Injection string
	Outcome   *CheckOutcome
}

func (r *Reply) add(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// Execute parses one play line and runs it against the session.
func (s *Session) Execute(input string) (Reply, error) {
	line, err := parser.Parse(s.parser, input)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	switch {
	case line.Narrate != nil:
		out, err := s.Narrate(line.Narrate.Text.Value(input))
		if err != nil {
			return reply, err
		}
		for _, evt := range out.Events {
			reply.add("%s", evt.Message())
		}

	case line.Act != nil:
		s.Say(line.Act.Text.Value(input))

	case line.Say != nil:
		s.Say(line.Say.Value(input))

	case line.Check != nil:
		action := line.Check.Action.Value(input)
		out, err := s.Check(line.Check.Ability, action, nil)
		if err != nil {
			return reply, err
		}
		if action != "" {
			s.Say(action)
		}
		reply.Outcome = &out
		reply.Injection = out.Injection
		if src := out.Source(); src != "" {
			reply.add("DC %d from %s", out.Result.Difficulty, src)
		} else {
			reply.add("DC %d (default)", out.Result.Difficulty)
		}
		if m := out.Resolution.Match; m.Status == engine.MatchNeedsModifier {
			reply.add("├─ %s needs a stated modifier before its difficulty applies", m.Entry().DisplayName())
		}
		reply.add("%s", out.Result.Summary())
		if out.Resolution.Notes != nil {
			reply.add("Notes: %s", *out.Resolution.Notes)
		}

	case line.Sheet != nil:
		reply.add("%s", s.Sheet())

	case line.Override != nil:
		if line.Override.Off() {
			if err := s.SetOverride(""); err != nil {
				return reply, err
			}
			reply.add("Override cleared.")
			break
		}
		if err := s.SetOverride(line.Override.Entry); err != nil {
			return reply, err
		}
		entry, _ := s.store.Lookup(line.Override.Entry)
		reply.add("Difficulty pinned to %s.", entry.DisplayName())

	case line.Answer != nil:
		var evt engine.Event
		if line.Answer.Accept() {
			evt, err = s.AcceptLevelUp()
		} else {
			evt, err = s.DeclineLevelUp()
		}
		if err != nil {
			return reply, err
		}
		if evt == nil {
			reply.add("No level-up pending.")
			break
		}
		reply.add("%s", evt.Message())

	case line.Toggle != nil:
		on := line.Toggle.Enable()
		if err := s.SetEnabled(line.Toggle.Compendium, on); err != nil {
			return reply, err
		}
		state := "disabled"
		if on {
			state = "enabled"
		}
		reply.add("Compendium %s %s.", line.Toggle.Compendium, state)

	case line.Difficulty != nil:
		if err := s.SetDifficulty(line.Difficulty.Value); err != nil {
			return reply, err
		}
		reply.add("Default difficulty set to %d.", s.character.Difficulty)

	case line.Help != nil:
		reply.add("%s", parser.Usage)

	default:
		return reply, fmt.Errorf("unsupported command pattern")
	}
	return reply, nil
}
