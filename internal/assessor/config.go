package assessor

// Config holds the thresholds the URL rules compare against.
type Config struct {
	// LongHostLength is the hostname length above which "Long domain name" fires.
	LongHostLength int `json:"long_host_length"`

	// MinHyphens is the hyphen count at which "Multiple hyphens" fires.
	MinHyphens int `json:"min_hyphens"`

	// MaxQueryDelimiters is the number of '&' a query may hold before
	// "Many query parameters" fires.
	MaxQueryDelimiters int `json:"max_query_delimiters"`

	// Keywords are matched, in order, against the lowercased URL.
	Keywords []string `json:"keywords"`
}

// SuspiciousKeywords is the default keyword list, in evaluation order.
var SuspiciousKeywords = []string{"login", "secure", "account", "update", "verify", "bank", "paypal", "appleid"}

func DefaultConfig() *Config {
	return &Config{
		LongHostLength:     30,
		MinHyphens:         3,
		MaxQueryDelimiters: 3,
		Keywords:           append([]string(nil), SuspiciousKeywords...),
	}
}
