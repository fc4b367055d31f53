package interact

import (
	"fmt"
	"strconv"
	"strings"
)

// Key codes for special and named keys.
const (
	KeyBackspace   = 8
	KeyTab         = 9
	KeyNumCenter   = 12
	KeyEnter       = 13
	KeyShift       = 16
	KeyCtrl        = 17
	KeyAlt         = 18
	KeyPause       = 19
	KeyCapsLock    = 20
	KeyEsc         = 27
	KeySpace       = 32
	KeyPageUp      = 33
	KeyPageDown    = 34
	KeyEnd         = 35
	KeyHome        = 36
	KeyLeft        = 37
	KeyUp          = 38
	KeyRight       = 39
	KeyDown        = 40
	KeyPrintScreen = 44
	KeyInsert      = 45
	KeyDelete      = 46
	KeyContextMenu = 93
	KeyNumMultiply = 106
	KeyNumPlus     = 107
	KeyNumMinus    = 109
	KeyNumPeriod   = 110
	KeyNumDivision = 111
)

var keyCodes = buildKeyTable()

// keyAliases maps alternative spellings to their canonical key name.
var keyAliases = map[string]string{
	"ESCAPE":      "ESC",
	"BACK":        "BACKSPACE",
	"BACKSP":      "BACKSPACE",
	"DEL":         "DELETE",
	"INS":         "INSERT",
	"CAPS":        "CAPS_LOCK",
	"CAPSLOCK":    "CAPS_LOCK",
	"PGUP":        "PAGE_UP",
	"PAGEUP":      "PAGE_UP",
	"PGDN":        "PAGE_DOWN",
	"PAGEDOWN":    "PAGE_DOWN",
	"PAGEDN":      "PAGE_DOWN",
	"PRINTSCREEN": "PRINT_SCREEN",
	"PRTSCR":      "PRINT_SCREEN",
	"PRTSC":       "PRINT_SCREEN",
}

func buildKeyTable() map[string]int {
	t := map[string]int{
		"BACKSPACE":    KeyBackspace,
		"TAB":          KeyTab,
		"NUM_CENTER":   KeyNumCenter,
		"ENTER":        KeyEnter,
		"RETURN":       KeyEnter,
		"SHIFT":        KeyShift,
		"CTRL":         KeyCtrl,
		"ALT":          KeyAlt,
		"PAUSE":        KeyPause,
		"CAPS_LOCK":    KeyCapsLock,
		"ESC":          KeyEsc,
		"SPACE":        KeySpace,
		"PAGE_UP":      KeyPageUp,
		"PAGE_DOWN":    KeyPageDown,
		"END":          KeyEnd,
		"HOME":         KeyHome,
		"LEFT":         KeyLeft,
		"UP":           KeyUp,
		"RIGHT":        KeyRight,
		"DOWN":         KeyDown,
		"PRINT_SCREEN": KeyPrintScreen,
		"INSERT":       KeyInsert,
		"DELETE":       KeyDelete,
		"CONTEXT_MENU": KeyContextMenu,
		"NUM_MULTIPLY": KeyNumMultiply,
		"NUM_PLUS":     KeyNumPlus,
		"NUM_MINUS":    KeyNumMinus,
		"NUM_PERIOD":   KeyNumPeriod,
		"NUM_DIVISION": KeyNumDivision,
	}

	digits := []string{"ZERO", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE"}
	for i, name := range digits {
		t[name] = 48 + i
		t[strconv.Itoa(i)] = 48 + i
		t["NUM_"+name] = 96 + i
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[string(c)] = int(c)
	}
	for i := 1; i <= 12; i++ {
		t[fmt.Sprintf("F%d", i)] = 111 + i
	}
	return t
}

// ResolveKey looks up the key code for a key name. Names are case
// insensitive and common abbreviations are accepted.
func ResolveKey(name string) (int, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if canonical, ok := keyAliases[key]; ok {
		key = canonical
	}
	code, ok := keyCodes[key]
	return code, ok
}

// parseKey accepts either a key name or a decimal key code. Single digits
// are names, so "9" is the digit key rather than TAB.
func parseKey(nameOrCode string) (int, error) {
	if code, ok := ResolveKey(nameOrCode); ok {
		return code, nil
	}
	if code, err := strconv.Atoi(strings.TrimSpace(nameOrCode)); err == nil && code > 0 {
		return code, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownKey, nameOrCode)
}
