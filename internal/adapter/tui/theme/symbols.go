package theme

import (
	"os"
	"strings"
)

// SymbolSet holds all UI symbols, allowing runtime switching between
// Unicode and ASCII fallback sets.
type SymbolSet struct {
	Error        string
	Warning      string
	Online       string
	Bullet       string
	ArrowR       string
	Bot          string
	Manager      string
	Collaborator string
	User         string
	Mic          string
}

var unicodeSymbols = SymbolSet{
	Error:        "✗",
	Warning:      "⚠",
	Online:       "●",
	Bullet:       "•",
	ArrowR:       "›",
	Bot:          "\U0001F916",
	Manager:      "\U0001F6E1",
	Collaborator: "\U0001F465",
	User:         "\U0001F464",
	Mic:          "\U0001F399",
}

var asciiSymbols = SymbolSet{
	Error:        "[ERR]",
	Warning:      "[!]",
	Online:       "*",
	Bullet:       "*",
	ArrowR:       ">",
	Bot:          "[bot]",
	Manager:      "[gestor]",
	Collaborator: "[colab]",
	User:         "[voce]",
	Mic:          "[rec]",
}

// Symbols is the active set, chosen by InitSymbols.
var Symbols = unicodeSymbols

// DetectUnicodeSupport checks whether the terminal likely supports Unicode.
// PEORA_ASCII_SYMBOLS=1 forces the ASCII set.
func DetectUnicodeSupport() bool {
	if v := os.Getenv("PEORA_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}

	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}

	// Most modern terminals support Unicode.
	return true
}

// InitSymbols selects the symbol set for the current terminal. Called by
// init(), and again by tests that change the environment.
func InitSymbols() {
	if DetectUnicodeSupport() {
		Symbols = unicodeSymbols
		return
	}
	Symbols = asciiSymbols
}

func init() {
	InitSymbols()
}
