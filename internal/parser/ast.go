package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Line is one line typed into the play prompt. Lines that do not start with a
// slash command are the player's own words.
type Line struct {
	Narrate    *NarrateCmd    `parser:"( @@"`
	Act        *ActCmd        `parser:"| @@"`
	Check      *CheckCmd      `parser:"| @@"`
	Sheet      *SheetCmd      `parser:"| @@"`
	Override   *OverrideCmd   `parser:"| @@"`
	Answer     *AnswerCmd     `parser:"| @@"`
	Toggle     *ToggleCmd     `parser:"| @@"`
	Difficulty *DifficultyCmd `parser:"| @@"`
	Help       *HelpCmd       `parser:"| @@"`
	Say        *Text          `parser:"| @@ )"`
}

// Text is free-form text. The original spacing and punctuation are recovered
// from the input with Value.
type Text struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Words []string `parser:"@(Word|Int) @(Word|Int|Command)*"`
}

// Value slices the text out of the input it was parsed from.
func (t *Text) Value(input string) string {
	if t == nil {
		return ""
	}
	if t.Pos.Offset >= 0 && t.EndPos.Offset <= len(input) && t.Pos.Offset < t.EndPos.Offset {
		return strings.TrimSpace(input[t.Pos.Offset:t.EndPos.Offset])
	}
	return strings.Join(t.Words, " ")
}

// NarrateCmd adds a narration turn as if the AI had written it.
type NarrateCmd struct {
	Keyword string `parser:"@\"/gm\""`
	Text    *Text  `parser:"@@"`
}

// ActCmd adds a player turn.
type ActCmd struct {
	Keyword string `parser:"@\"/me\""`
	Text    *Text  `parser:"@@"`
}

// CheckCmd rolls an ability check for an optional action.
type CheckCmd struct {
	Keyword string `parser:"@\"/check\""`
	Ability string `parser:"@Word"`
	Action  *Text  `parser:"@@?"`
}

// SheetCmd prints the character sheet.
type SheetCmd struct {
	Keyword string `parser:"@\"/sheet\""`
}

// OverrideCmd pins difficulty to a compendium entry, or clears it with "off".
type OverrideCmd struct {
	Keyword string `parser:"@\"/override\""`
	Entry   string `parser:"@Word"`
}

// Off reports whether the override is being cleared.
func (o *OverrideCmd) Off() bool {
	switch strings.ToLower(o.Entry) {
	case "off", "none", "clear":
		return true
	}
	return false
}

// AnswerCmd answers a pending level-up prompt.
type AnswerCmd struct {
	Answer string `parser:"@(\"/yes\"|\"/no\")"`
}

// Accept reports whether the answer is yes.
func (a *AnswerCmd) Accept() bool {
	return strings.EqualFold(a.Answer, "/yes")
}

// ToggleCmd enables or disables a compendium.
type ToggleCmd struct {
	Action     string `parser:"@(\"/enable\"|\"/disable\")"`
	Compendium string `parser:"@Word"`
}

// Enable reports whether the compendium is being turned on.
func (t *ToggleCmd) Enable() bool {
	return strings.EqualFold(t.Action, "/enable")
}

// DifficultyCmd sets the default difficulty.
type DifficultyCmd struct {
	Keyword string `parser:"@\"/dc\""`
	Value   int    `parser:"@Int"`
}

// HelpCmd lists the commands.
type HelpCmd struct {
	Keyword string `parser:"@\"/help\""`
}
