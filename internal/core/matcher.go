package core

import (
	"strings"
)

// Matches reports whether keyword occurs in text as a case-insensitive
// substring. Empty text never matches.
func Matches(text, keyword string) bool {
	if text == "" || keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// MatchesMessage checks the subject and every body part of a message.
// This is the local re-verification applied after a server-side search:
// the server result is a superset and is never trusted on its own.
func MatchesMessage(msg *Message, keyword string) bool {
	if msg == nil {
		return false
	}
	if Matches(msg.Subject, keyword) {
		return true
	}
	for _, part := range msg.Parts {
		if Matches(part.Text, keyword) {
			return true
		}
	}
	return false
}
