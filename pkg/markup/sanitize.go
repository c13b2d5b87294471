package markup

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	notifyPolicyOnce sync.Once
	notifyPolicy     *bluemonday.Policy
)

// SanitizeNotify strips every tag from server supplied notification text.
func SanitizeNotify(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(notifySanitizer().Sanitize(trimmed))
}

func notifySanitizer() *bluemonday.Policy {
	notifyPolicyOnce.Do(func() {
		notifyPolicy = bluemonday.StrictPolicy()
	})
	return notifyPolicy
}

func registerFilters() {
	if !pongo2.FilterExists("sanitize") {
		_ = pongo2.RegisterFilter("sanitize", filterSanitize)
	}
}

// filterSanitize returns a safe value: the policy output is already escaped.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(SanitizeNotify(in.String())), nil
}
