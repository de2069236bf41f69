package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucashald/skill-check/internal/match"
	"go.uber.org/zap"
)

// DefaultCooldown is the number of turns the level-up detector stays quiet
// after firing.
const DefaultCooldown = 3

const (
	minItemNameLen = 3
	maxItemNameLen = 49
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const numberPattern = `\d+|one|two|three|four|five|six|seven|eight|nine|ten`

var (
	levelReferencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:since|after|when|because|once|before|until)\s+(?:you|we|they|he|she|i)(?:'ve|\s+have|\s+had)?\s+(?:leveled|levelled)\s+up\b`),
		regexp.MustCompile(`(?i)\b(?:last|previous|prior|earlier|next)\s+level[\s-]?up\b`),
		regexp.MustCompile(`(?i)\balready\s+(?:leveled|levelled)\b`),
		regexp.MustCompile(`(?i)\b(?:remember|recall)(?:ed|s)?\s+(?:when|how)\b[^.!?]*\blevel`),
		regexp.MustCompile(`(?i)\b(?:need|needs|needed)\s+[^.!?]*\bto\s+level\s+up\b`),
	}

	levelsGainedPattern = regexp.MustCompile(`(?i)\b(?:gain(?:ed|s)?|earn(?:ed|s)?|advance(?:d|s)?)\s+(` + numberPattern + `)\s+(?:new\s+|more\s+)?levels?\b`)
	levelNowPattern     = regexp.MustCompile(`(?i)\b(?:you\s+are\s+now|you'?re\s+now|you\s+have\s+reached|you'?ve\s+reached|you\s+reached|advanced\s+to|now\s+at)\s+level\s+(\d+)\b`)

	levelUpTriggers = []string{
		"you level up",
		"you leveled up",
		"you levelled up",
		"you have leveled up",
		"you've leveled up",
		"you gain a level",
		"you gained a level",
		"you've gained a level",
		"you have gained a level",
		"gained a new level",
		"reached a new level",
	}
)

const (
	itemQty     = `(?:(` + numberPattern + `)\s+)?(?:(?:the|a|an)\s+)?`
	inventoryOf = `\s+(?:your\s+|the\s+|my\s+|their\s+)?inventory\b`
	passive     = `\s+(?:(?:has|have|was|were|is|are)\s+(?:been\s+)?)?`
	shortName   = `([a-z][\w'-]*(?:\s+[a-z][\w'-]*){0,3}?)`
)

var (
	itemAddedActive    = regexp.MustCompile(`(?i)\badd(?:ed|s|ing)?\s+` + itemQty + `([a-z][\w' -]*?)\s+to` + inventoryOf)
	itemAddedPassive   = regexp.MustCompile(`(?i)\b` + itemQty + shortName + passive + `added\s+to` + inventoryOf)
	itemRemovedActive  = regexp.MustCompile(`(?i)\bremove(?:d|s)?\s+` + itemQty + `([a-z][\w' -]*?)\s+from` + inventoryOf)
	itemRemovedPassive = regexp.MustCompile(`(?i)\b` + itemQty + shortName + passive + `removed\s+from` + inventoryOf)

	spellPattern = regexp.MustCompile(`(?i)\byou(?:'ve|\s+have)?\s+(?:learn(?:ed|t|s)?|gain(?:ed|s)?|obtain(?:ed|s)?|acquire(?:d|s)?)\s+the\s+spell\s+(?:of\s+)?["']?([^.,;:!?\n"]+?)["']?(?:\s+(?:and|which|that|from|as|with|but|to|for|while|by)\b|[.,;:!?\n"]|$)`)
)

var pronouns = map[string]bool{
	"it": true, "them": true, "this": true, "that": true, "these": true, "those": true,
	"him": true, "her": true, "something": true, "everything": true, "anything": true,
	"all": true, "one": true, "some": true, "item": true, "items": true,
	"which": true, "who": true, "what": true,
}

// LevelUpPrompt asks the player to confirm a detected level-up.
type LevelUpPrompt struct {
	Levels int `json:"levels"`
	Turn   int `json:"turn"`
}

// Extraction is what one message contributed. Events are already applied.
type Extraction struct {
	Events  []Event
	LevelUp *LevelUpPrompt
}

// Empty reports whether the message changed nothing.
func (x Extraction) Empty() bool {
	return len(x.Events) == 0
}

// Extractor runs the level-up, inventory and spell detectors over AI narration.
type Extractor struct {
	cooldown int
	matcher  *match.Matcher
	log      *zap.Logger
}

// NewExtractor returns an extractor with the given level-up cooldown in turns.
// A non-positive cooldown uses DefaultCooldown.
func NewExtractor(cooldown int, log *zap.Logger) *Extractor {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{cooldown: cooldown, matcher: match.New(), log: log}
}

// Extract scans one newly observed message and applies what it finds to ch.
// Player messages and messages at or before ch.LastProcessedIndex are ignored.
func (x *Extractor) Extract(msg Message, ch *Character) Extraction {
	var out Extraction
	if msg.IsUser || msg.Index <= ch.LastProcessedIndex {
		return out
	}
	ch.LastProcessedIndex = msg.Index

	out.Events = append(out.Events, x.inventory(msg)...)
	out.Events = append(out.Events, x.spells(msg, ch)...)

	if x.coolingDown(msg.Index, ch) {
		x.log.Debug("level-up detector cooling down", zap.Int("turn", msg.Index))
	} else if n := x.DetectLevels(msg.Text, ch.Level); n > 0 {
		out.LevelUp = &LevelUpPrompt{Levels: n, Turn: msg.Index}
		out.Events = append(out.Events, &LevelUpDetectedEvent{Levels: n, Turn: msg.Index})
	}

	for _, ev := range out.Events {
		if err := ev.Apply(ch); err != nil {
			x.log.Warn("progression event rejected", zap.String("event", string(ev.Type())), zap.Error(err))
			continue
		}
		x.log.Debug("progression applied", zap.String("event", string(ev.Type())), zap.String("message", ev.Message()))
	}
	return out
}

func (x *Extractor) coolingDown(turn int, ch *Character) bool {
	return ch.LastLevelUpIndex != nil && turn-*ch.LastLevelUpIndex < x.cooldown
}

// DetectLevels returns how many levels text announces for a character at
// currentLevel, or 0. Retrospective mentions suppress detection. The largest
// count found by any sub-check wins; counts are never summed.
func (x *Extractor) DetectLevels(text string, currentLevel int) int {
	for _, re := range levelReferencePatterns {
		if re.MatchString(text) {
			return 0
		}
	}

	gained := 0
	for _, m := range levelsGainedPattern.FindAllStringSubmatch(text, -1) {
		gained = max(gained, parseCount(m[1]))
	}
	for _, m := range levelNowPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > currentLevel {
			gained = max(gained, n-currentLevel)
		}
	}
	lowered := strings.ToLower(text)
	gained = max(gained, x.matcher.Count(lowered, "level up!"))

	if gained == 0 {
		if _, ok := x.matcher.ContainsAny(lowered, levelUpTriggers); ok {
			gained = 1
		}
	}
	return gained
}

type positioned struct {
	at int
	ev Event
}

func (x *Extractor) inventory(msg Message) []Event {
	var found []positioned
	collect := func(re *regexp.Regexp, removed bool) {
		for _, idx := range re.FindAllStringSubmatchIndex(msg.Text, -1) {
			qty := 1
			if idx[2] >= 0 {
				qty = parseCount(msg.Text[idx[2]:idx[3]])
			}
			name, ok := cleanItemName(msg.Text[idx[4]:idx[5]])
			if !ok || qty <= 0 {
				continue
			}
			var ev Event = &ItemAddedEvent{Name: name, Quantity: qty, Turn: msg.Index}
			if removed {
				ev = &ItemRemovedEvent{Name: name, Quantity: qty, Turn: msg.Index}
			}
			found = append(found, positioned{at: idx[0], ev: ev})
		}
	}
	collect(itemAddedActive, false)
	collect(itemAddedPassive, false)
	collect(itemRemovedActive, true)
	collect(itemRemovedPassive, true)

	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })
	events := make([]Event, 0, len(found))
	for _, p := range found {
		events = append(events, p.ev)
	}
	return events
}

func cleanItemName(raw string) (string, bool) {
	words := strings.Fields(raw)
	// "pick up a torch" keeps only what follows the last article.
	for i := len(words) - 2; i >= 0; i-- {
		if w := strings.ToLower(words[i]); w == "a" || w == "an" || w == "the" {
			words = words[i+1:]
			break
		}
	}
	name := strings.Trim(strings.Join(words, " "), `"'`)
	if pronouns[strings.ToLower(name)] {
		return "", false
	}
	if n := len([]rune(name)); n < minItemNameLen || n > maxItemNameLen {
		return "", false
	}
	return name, true
}

func (x *Extractor) spells(msg Message, ch *Character) []Event {
	var events []Event
	seen := make(map[string]bool)
	for _, m := range spellPattern.FindAllStringSubmatch(msg.Text, -1) {
		name := strings.Join(strings.Fields(m[1]), " ")
		key := strings.ToLower(name)
		if len([]rune(name)) < 2 || len([]rune(name)) > maxItemNameLen || seen[key] || ch.KnowsSpell(name) {
			continue
		}
		seen[key] = true
		events = append(events, &SpellLearnedEvent{Name: name, Turn: msg.Index})
	}
	return events
}

func parseCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := numberWords[s]; ok {
		return n
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// AcceptLevelUp turns the pending prompt into levels and unspent points.
// It returns nil when nothing is pending.
func AcceptLevelUp(ch *Character) Event {
	if ch.PendingLevels <= 0 {
		return nil
	}
	ev := &LevelGainedEvent{Levels: ch.PendingLevels}
	if err := ev.Apply(ch); err != nil {
		return nil
	}
	return ev
}

// DeclineLevelUp drops the pending prompt. The cooldown marker set on
// detection stays, so the same announcement does not prompt again.
func DeclineLevelUp(ch *Character) Event {
	if ch.PendingLevels <= 0 {
		return nil
	}
	ev := &LevelUpDeclinedEvent{Levels: ch.PendingLevels}
	_ = ev.Apply(ch)
	return ev
}
