package metrics

import (
	"time"

	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

// Collector periodically samples the store and updates gauge metrics.
// It owns no domain logic of its own — every number it reports is a
// straight count over storage.Store's list methods.
type Collector struct {
	store  storage.Store
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(store storage.Store) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectNodeRoleMetrics()
	c.collectCredentialMetrics()
}

func (c *Collector) collectNodeMetrics() {
	nodes, err := c.store.ListNodes()
	if err != nil {
		return
	}

	counts := make(map[string]int)
	for _, node := range nodes {
		counts[string(node.CodeStatus)]++
	}

	for status, count := range counts {
		NodesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *Collector) collectNodeRoleMetrics() {
	assignments, err := c.store.ListNodeRoles()
	if err != nil {
		return
	}

	counts := make(map[string]int)
	for _, nr := range assignments {
		counts[string(nr.Status)]++
	}

	for status, count := range counts {
		NodeRolesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *Collector) collectCredentialMetrics() {
	for _, credType := range []types.CredentialType{types.CredentialSSH, types.CredentialTLS, types.CredentialVNC} {
		creds, err := c.store.ListCredentialsByType(credType, false)
		if err != nil {
			continue
		}
		CredentialsTotal.WithLabelValues(string(credType)).Set(float64(len(creds)))
	}
}
