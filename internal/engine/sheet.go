package engine

import (
	"fmt"
	"strings"
)

// Sheet renders the character for injection into the narrative context.
func Sheet(c *Character) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Character Sheet]\nLevel %d", c.Level)
	if c.UnspentPoints > 0 {
		fmt.Fprintf(&sb, " (%d unspent point(s))", c.UnspentPoints)
	}
	sb.WriteString("\nAbilities:")
	for _, k := range AbilityKeys {
		if c.Style == StyleFlat {
			fmt.Fprintf(&sb, "\n├─ %s %s%d", c.AbilityName(k), sign(c.Modifier(k)), abs(c.Modifier(k)))
			continue
		}
		fmt.Fprintf(&sb, "\n├─ %s %d (%s%d)", c.AbilityName(k), c.Score(k), sign(c.Modifier(k)), abs(c.Modifier(k)))
	}

	sb.WriteString("\nInventory:")
	if len(c.Inventory) == 0 {
		sb.WriteString(" empty")
	}
	for _, it := range c.Inventory {
		fmt.Fprintf(&sb, "\n├─ %s x%d", it.Name, it.Quantity)
	}

	sb.WriteString("\nSpells:")
	if len(c.Spells) == 0 {
		sb.WriteString(" none")
	}
	for _, s := range c.Spells {
		fmt.Fprintf(&sb, "\n├─ %s", s.Name)
	}
	return sb.String()
}
