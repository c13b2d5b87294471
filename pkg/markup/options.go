package markup

import "strings"

// Defaults for the region and session markup contract.
const (
	DefaultRegionClass   = "jsondeposit"
	DefaultBlobClass     = "jsondeposit-blob"
	DefaultLoadingClass  = "jsondeposit-loading"
	DefaultRenderedClass = "jsondeposit-rendered"
	DefaultSessionID     = "deposit-records"
)

// Selectors names the classes and the session node id the parser looks for.
type Selectors struct {
	Region   string
	Blob     string
	Loading  string
	Rendered string
	// Session matches an element by id or by tag name.
	Session string
}

// DefaultSelectors returns the stock markup contract.
func DefaultSelectors() Selectors {
	return Selectors{
		Region:   DefaultRegionClass,
		Blob:     DefaultBlobClass,
		Loading:  DefaultLoadingClass,
		Rendered: DefaultRenderedClass,
		Session:  DefaultSessionID,
	}
}

func (s Selectors) withDefaults() Selectors {
	defaults := DefaultSelectors()
	pick := func(value, fallback string) string {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
		return fallback
	}
	return Selectors{
		Region:   pick(s.Region, defaults.Region),
		Blob:     pick(s.Blob, defaults.Blob),
		Loading:  pick(s.Loading, defaults.Loading),
		Rendered: pick(s.Rendered, defaults.Rendered),
		Session:  pick(s.Session, defaults.Session),
	}
}

// Option configures Parse.
type Option func(*Selectors)

// WithSelectors overrides the markup contract. Empty fields keep defaults.
func WithSelectors(selectors Selectors) Option {
	return func(s *Selectors) {
		*s = selectors.withDefaults()
	}
}

// WithSessionID changes the id (or tag) of the session node.
func WithSessionID(id string) Option {
	return func(s *Selectors) {
		if id = strings.TrimSpace(id); id != "" {
			s.Session = id
		}
	}
}
