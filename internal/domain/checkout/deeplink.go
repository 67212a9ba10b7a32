package checkout

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the WhatsApp click-to-chat endpoint
const DefaultBaseURL = "https://wa.me"

// DeepLink returns "<base>/<phone>?text=<message>". The message is encoded as a
// URI component, so spaces become %20 rather than "+". Non-digits are stripped
// from phone.
func DeepLink(base, phone, message string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + digitsOnly(phone) + "?text=" + encodeComponent(message)
}

// componentUnescapes restores the characters encodeURIComponent leaves as-is
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
