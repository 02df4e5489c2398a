// Package command turns REPL input lines into typed catalog commands.
package command

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Kind identifies what the user asked for.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindList       Kind = "list"
	KindShow       Kind = "show"
	KindCreate     Kind = "create"
	KindEdit       Kind = "edit"
	KindDelete     Kind = "delete"
	KindSearch     Kind = "search"
	KindCuisine    Kind = "cuisine"
	KindDifficulty Kind = "difficulty"
	KindMaxTime    Kind = "maxtime"
	KindTag        Kind = "tag"
	KindClear      Kind = "clear"
	KindPage       Kind = "page"
	KindNext       Kind = "next"
	KindPrev       Kind = "prev"
	KindSize       Kind = "size"
	KindRefresh    Kind = "refresh"
	KindMode       Kind = "mode"
	KindHelp       Kind = "help"
	KindQuit       Kind = "quit"
)

// Command is one parsed input line. ID is set for show, edit and delete.
// Arg holds the remaining text; for create and edit it is the k=v list.
type Command struct {
	Kind Kind
	ID   string
	Arg  string
	Raw  string
}

// Parser matches input lines against keyword rules.
type Parser struct {
	log   *logger.Logger
	rules []rule
}

type rule struct {
	regex *regexp.Regexp
	kind  Kind
	// withID means the first argument is a recipe id.
	withID bool
}

// NewParser creates a keyword-based command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log.Named("command")}
	p.rules = []rule{
		{regexp.MustCompile(`(?i)^(list|ls|l)$`), KindList, false},
		{regexp.MustCompile(`(?i)^(show|view|get)\s+(\S+)$`), KindShow, true},
		{regexp.MustCompile(`(?i)^(create|new|add)(?:\s+(.*))?$`), KindCreate, false},
		{regexp.MustCompile(`(?i)^(edit|update|set)\s+(\S+)(?:\s+(.*))?$`), KindEdit, true},
		{regexp.MustCompile(`(?i)^(delete|del|rm|remove)\s+(\S+)$`), KindDelete, true},
		{regexp.MustCompile(`(?i)^(search|find|query)(?:\s+(.*))?$`), KindSearch, false},
		{regexp.MustCompile(`^(/)\s*(.*)$`), KindSearch, false},
		{regexp.MustCompile(`(?i)^(cuisine)(?:\s+(.*))?$`), KindCuisine, false},
		{regexp.MustCompile(`(?i)^(difficulty|diff)(?:\s+(.*))?$`), KindDifficulty, false},
		{regexp.MustCompile(`(?i)^(maxtime|time)(?:\s+(.*))?$`), KindMaxTime, false},
		{regexp.MustCompile(`(?i)^(tags?)(?:\s+(.*))?$`), KindTag, false},
		{regexp.MustCompile(`(?i)^(clear|reset)$`), KindClear, false},
		{regexp.MustCompile(`(?i)^(page|p)\s+(\S+)$`), KindPage, false},
		{regexp.MustCompile(`(?i)^(next|n|>)$`), KindNext, false},
		{regexp.MustCompile(`(?i)^(prev|previous|b|<)$`), KindPrev, false},
		{regexp.MustCompile(`(?i)^(size|pagesize)\s+(\S+)$`), KindSize, false},
		{regexp.MustCompile(`(?i)^(refresh|reload|r)$`), KindRefresh, false},
		{regexp.MustCompile(`(?i)^(mode|status)$`), KindMode, false},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), KindHelp, false},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), KindQuit, false},
	}
	return p
}

// Parse converts a line into a command. Blank input yields KindUnknown with
// an empty Raw; anything unmatched yields KindUnknown with the input kept.
func (p *Parser) Parse(input string) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Kind: KindUnknown}
	}

	// A bare id is shorthand for show.
	if isDigits(trimmed) {
		return Command{Kind: KindShow, ID: trimmed, Raw: trimmed}
	}

	for _, r := range p.rules {
		m := r.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		cmd := Command{Kind: r.kind, Raw: trimmed}
		rest := m[2:]
		if r.withID && len(rest) > 0 {
			cmd.ID = rest[0]
			rest = rest[1:]
		}
		if len(rest) > 0 {
			cmd.Arg = strings.TrimSpace(rest[0])
		}
		p.log.Debug("matched %s (id=%q arg=%q)", cmd.Kind, cmd.ID, cmd.Arg)
		return cmd
	}

	p.log.Debug("no match for %q", trimmed)
	return Command{Kind: KindUnknown, Raw: trimmed}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
