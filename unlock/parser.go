package unlock

import (
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command is one sub-command of a rule: a lower-cased name and its arguments.
type Command struct {
	Name string
	Args []string
}

func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// ParseCommands splits "a,1;b,2,3" into commands. Blank sub-commands are dropped.
func ParseCommands(text string) []Command {
	var cmds []Command
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		cmds = append(cmds, Command{
			Name: strings.ToLower(fields[0]),
			Args: fields[1:],
		})
	}
	return cmds
}

// ParseRule builds an unresolved entry from one rule's text.
//
// Every sub-command is tested against every directive; the last reward
// directive wins, while code and thresholds accumulate. Unknown directives
// are ignored.
func ParseRule(name, text string, log logrus.FieldLogger) Entry {
	if log == nil {
		log = discardLogger()
	}
	e := newEntry(name)

	for _, cmd := range ParseCommands(text) {
		switch cmd.Name {
		case "song":
			e.Type = RewardSong
			e.Args = cmd.Args
		case "steps":
			e.Type = RewardSteps
			e.Args = cmd.Args
		case "course":
			e.Type = RewardCourse
			e.Args = cmd.Args
		case "mod":
			e.Type = RewardModifier
			e.Args = cmd.Args
		}

		switch cmd.Name {
		case "code":
			// Codes can exceed float precision, so parse the text as an integer.
			id, err := strconv.Atoi(cmd.Arg(0))
			if err != nil {
				log.Warnf("[Unlock] %s: invalid code %q", name, cmd.Arg(0))
				continue
			}
			e.ID = id
		case "roulette":
			e.RouletteOnly = true
		default:
			kind, ok := ParseRequirementKind(cmd.Name)
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(cmd.Arg(0), 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				log.Warnf("[Unlock] %s: invalid %s threshold %q", name, kind, cmd.Arg(0))
				continue
			}
			e.Requirements[kind] = v
		}
	}
	return e
}
