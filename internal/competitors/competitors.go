package competitors

import (
	"strings"

	"CompetitorBot/internal/config"
	"CompetitorBot/internal/domain"
)

// Catalog is an ordered, immutable set of tracked competitors. Order matters:
// inference falls back to "all keys in catalog order".
type Catalog struct {
	entries []domain.Competitor
}

// Default returns the built-in catalog of tracked rivals.
func Default() *Catalog {
	return &Catalog{entries: []domain.Competitor{
		{Key: "vmware", Domains: []string{"vmware.com", "broadcom.com"}},
		{Key: "nutanix", Domains: []string{"nutanix.com"}},
		{Key: "aws", Domains: []string{"aws.amazon.com", "aws.amazon.com/eks", "aws.amazon.com/ec2"}},
		{Key: "azure", Domains: []string{"azure.microsoft.com", "learn.microsoft.com/azure/openshift"}},
		{Key: "google", Domains: []string{"cloud.google.com", "cloud.google.com/kubernetes-engine"}},
		{Key: "oracle", Domains: []string{"oracle.com/cloud"}},
		{Key: "suse", Domains: []string{"suse.com", "rancher.com"}},
		{Key: "redhat", Domains: []string{"redhat.com/openshift/virtualization", "redhat.com/openshift"}},
	}}
}

// FromConfig builds a catalog from configured entries, falling back to the
// built-in list when none are configured.
func FromConfig(cfg []config.CompetitorConfig) *Catalog {
	if len(cfg) == 0 {
		return Default()
	}

	entries := make([]domain.Competitor, 0, len(cfg))
	for _, c := range cfg {
		key := strings.ToLower(strings.TrimSpace(c.Key))
		if key == "" {
			continue
		}
		entries = append(entries, domain.Competitor{Key: key, Domains: c.Domains})
	}

	if len(entries) == 0 {
		return Default()
	}
	return &Catalog{entries: entries}
}

// Keys lists every competitor key in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns the catalog in order.
func (c *Catalog) Entries() []domain.Competitor {
	return c.entries
}

// Select returns the entries whose keys appear in the given list, preserving
// catalog order.
func (c *Catalog) Select(keys []string) []domain.Competitor {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}

	var selected []domain.Competitor
	for _, e := range c.entries {
		if wanted[e.Key] {
			selected = append(selected, e)
		}
	}
	return selected
}

// Infer maps a free-text question onto competitor keys: any key appearing as
// a lowercase substring is a hit; no hits means every key. Never empty.
func (c *Catalog) Infer(question string) []string {
	q := strings.ToLower(question)

	var hits []string
	for _, e := range c.entries {
		if strings.Contains(q, e.Key) {
			hits = append(hits, e.Key)
		}
	}

	if len(hits) == 0 {
		return c.Keys()
	}
	return hits
}
