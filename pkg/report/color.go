package report

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode selects when human output is colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode: %s", v)
	}
}

// EnvMap turns os.Environ-style entries into a map.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		if idx := strings.Index(entry, "="); idx >= 0 {
			env[entry[:idx]] = entry[idx+1:]
		} else {
			env[entry] = ""
		}
	}
	return env
}

// ColorEnabled resolves mode for out.
//
// In auto mode, first match wins:
//  1. TERM=dumb, NO_COLOR or CLICOLOR=0 disable colors.
//  2. CLICOLOR_FORCE or FORCE_COLOR with a non-zero value enable colors.
//  3. Otherwise colors are emitted only when out is a terminal.
func ColorEnabled(mode ColorMode, out *os.File, env map[string]string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if strings.ToLower(strings.TrimSpace(env["TERM"])) == "dumb" ||
		strings.TrimSpace(env["NO_COLOR"]) != "" ||
		strings.TrimSpace(env["CLICOLOR"]) == "0" {
		return false
	}
	if forceColor(env["CLICOLOR_FORCE"]) || forceColor(env["FORCE_COLOR"]) {
		return true
	}
	return out != nil && term.IsTerminal(int(out.Fd()))
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}

type style string

const (
	styleBold  style = "1"
	styleRed   style = "31"
	styleGreen style = "32"
	styleDim   style = "2"
)

type painter bool

func (p painter) paint(s style, text string) string {
	if !p || text == "" {
		return text
	}
	return "\x1b[" + string(s) + "m" + text + "\x1b[0m"
}
