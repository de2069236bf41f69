package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("nothing to do")

// Usage lists the commands understood by the play prompt.
const Usage = `/gm <text>              narrate a turn as the AI
/me <text>              speak or act as the player (plain text does the same)
/check <ability> [text] roll a check against the active challenges
/sheet                  show the character sheet
/override <entry>|off   pin the difficulty to a compendium entry
/yes, /no               answer a level-up prompt
/enable|/disable <id>   toggle a compendium
/dc <number>            set the default difficulty
/help                   show this help`

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmpty
	}

	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "/gm":
		return fmt.Errorf("the command /gm must be: /gm <narration>")
	case "/me":
		return fmt.Errorf("the command /me must be: /me <text>")
	case "/check":
		return fmt.Errorf("the command /check must be: /check <ability> [action text]")
	case "/override":
		return fmt.Errorf("the command /override must be: /override <entry id>|off")
	case "/enable", "/disable":
		return fmt.Errorf("the command %s must be: %s <compendium id>", cmd, cmd)
	case "/dc":
		return fmt.Errorf("the command /dc must be: /dc <1-30>")
	case "/sheet", "/yes", "/no", "/help":
		return fmt.Errorf("the command %s takes no arguments", cmd)
	}
	if strings.HasPrefix(cmd, "/") {
		return fmt.Errorf("unknown command %s, try /help", cmd)
	}
	return fmt.Errorf("I wasn't able to understand your command: %w", err)
}
