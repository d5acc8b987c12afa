package security

import "github.com/autobot/fleetctl/pkg/types"

// VNCDefaults carries the caller-supplied VNC connection parameters for
// Create/Update. Zero values mean "not supplied" — VNCPort is only
// ever derived automatically when the caller leaves it at zero.
type VNCDefaults struct {
	Port          int `json:"port,omitempty"`
	DisplayNumber int `json:"display_number,omitempty"`
	VNCPort       int `json:"vnc_port,omitempty"`
}

// resolveVNCMetadata computes vnc_port = 5900 + display_number when the
// caller did not explicitly supply one (invariant I4 / property P6).
func resolveVNCMetadata(d VNCDefaults) *types.VNCMetadata {
	vncPort := d.VNCPort
	if vncPort == 0 {
		vncPort = types.VNCPortBase + d.DisplayNumber
	}
	return &types.VNCMetadata{
		Port:          d.Port,
		DisplayNumber: d.DisplayNumber,
		VNCPort:       vncPort,
	}
}

// mergeVNCMetadata applies an update, recomputing vnc_port from the new
// display_number ONLY when the update itself does not explicitly set
// vnc_port — matching the source's update precedence rule exactly.
func mergeVNCMetadata(existing *types.VNCMetadata, update VNCDefaults) *types.VNCMetadata {
	if existing == nil {
		return resolveVNCMetadata(update)
	}
	merged := *existing
	if update.Port != 0 {
		merged.Port = update.Port
	}
	displayChanged := update.DisplayNumber != 0 && update.DisplayNumber != existing.DisplayNumber
	if displayChanged {
		merged.DisplayNumber = update.DisplayNumber
	}
	if update.VNCPort != 0 {
		merged.VNCPort = update.VNCPort
	} else if displayChanged {
		merged.VNCPort = types.VNCPortBase + merged.DisplayNumber
	}
	return &merged
}
