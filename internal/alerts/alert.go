// Package alerts ingests the CAP emergency feed: a streaming parser turns the
// raw XML into Alert values, and a Poller keeps an atomically replaced
// snapshot of the current entries.
package alerts

// Alert is one entry of the CAP feed. All fields are optional; an entry with
// missing fields is still a valid alert.
type Alert struct {
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
	AreaDesc    string `json:"areaDesc,omitempty"`
	Severity    string `json:"severity,omitempty"`
}
