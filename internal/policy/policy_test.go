package policy

import (
	"testing"

	"github.com/oranjuce/BGP-Router/internal/neighbor"
)

// TestForwardingRule checks that a non-customer source forwarding
// to a non-customer nexthop is never allowed.
func TestForwardingRule(t *testing.T) {
	tests := []struct {
		src, next neighbor.Relation
		want      bool
	}{
		{neighbor.Customer, neighbor.Peer, true},
		{neighbor.Peer, neighbor.Customer, true},
		{neighbor.Customer, neighbor.Customer, true},
		{neighbor.Peer, neighbor.Peer, false},
		{neighbor.Peer, neighbor.Provider, false},
		{neighbor.Provider, neighbor.Peer, false},
	}

	for _, tt := range tests {
		if got := CanForward(tt.src, tt.next); got != tt.want {
			t.Errorf("CanForward(%v, %v) = %v, want %v", tt.src, tt.next, got, tt.want)
		}
	}
}

// TestExportRule checks that after any update from a peer or
// provider, no announce is sent to any peer or provider.
func TestExportRule(t *testing.T) {
	forPeer := ExportTargets(neighbor.Peer)
	if forPeer(neighbor.Peer) || forPeer(neighbor.Provider) {
		t.Errorf("expected peer-sourced updates to stay off peer/provider targets")
	}
	if !forPeer(neighbor.Customer) {
		t.Errorf("expected peer-sourced updates to still reach customers")
	}

	forProvider := ExportTargets(neighbor.Provider)
	if forProvider(neighbor.Peer) || forProvider(neighbor.Provider) {
		t.Errorf("expected provider-sourced updates to stay off peer/provider targets")
	}

	forCustomer := ExportTargets(neighbor.Customer)
	if !forCustomer(neighbor.Peer) || !forCustomer(neighbor.Provider) || !forCustomer(neighbor.Customer) {
		t.Errorf("expected customer-sourced updates to reach every relation")
	}
}
