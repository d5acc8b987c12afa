// Package security implements the Credential Vault (spec C1): a
// symmetric-encrypted store of node secrets (SSH passwords, TLS
// certificate bundles, VNC credentials) and the single-use access
// token exchange that is the only path by which plaintext ever leaves
// the vault.
package security

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/storage"
	"github.com/autobot/fleetctl/pkg/types"
)

// PlaintextFields carries the secret material passed to Create/Update.
// Recognized keys depend on the credential type:
//
//	SSH: "password"
//	TLS: "ca_cert", "server_cert", "server_key"
//	VNC: "password"
type PlaintextFields map[string]string

// Vault is the Credential Vault. It is constructed once at process
// start and passed by reference to every component that needs it —
// there is no package-level singleton or get-or-create accessor.
type Vault struct {
	encryptionKey []byte // 32 bytes, AES-256
	store         storage.Store
	tokens        *TokenStore
}

// NewVault builds a Vault around a 32-byte encryption key derived from
// configuration (see pkg/config) and a Store for credential rows.
func NewVault(encryptionKey []byte, store storage.Store) (*Vault, error) {
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes for AES-256, got %d: %w", len(encryptionKey), apperr.ErrValidation)
	}
	return &Vault{
		encryptionKey: encryptionKey,
		store:         store,
		tokens:        NewTokenStore(),
	}, nil
}

// Create encrypts plaintext fields and persists a new Credential for
// node_id. Duplicate (node_id, name) pairs are rejected as a conflict.
func (v *Vault) Create(nodeID string, credType types.CredentialType, name string, fields PlaintextFields, meta VNCDefaults) (*types.Credential, error) {
	if _, err := v.store.GetNode(nodeID); err != nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, apperr.ErrNotFound)
	}
	if _, err := v.store.FindCredentialByNodeAndName(nodeID, name); err == nil {
		return nil, fmt.Errorf("credential %s/%s already exists: %w", nodeID, name, apperr.ErrConflict)
	}

	plaintext, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal plaintext fields: %w", err)
	}
	ciphertext, err := encrypt(v.encryptionKey, plaintext)
	if err != nil {
		return nil, err
	}

	cred := &types.Credential{
		ID:         credentialID(nodeID, string(credType), name),
		NodeID:     nodeID,
		Type:       credType,
		Name:       name,
		Ciphertext: ciphertext,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	switch credType {
	case types.CredentialTLS:
		tlsMeta, err := ParseTLSMetadata([]byte(fields["server_cert"]))
		if err != nil {
			return nil, fmt.Errorf("parse server certificate: %w: %w", err, apperr.ErrValidation)
		}
		cred.TLS = tlsMeta
	case types.CredentialVNC:
		cred.VNC = resolveVNCMetadata(meta)
	}

	if err := v.store.CreateCredential(cred); err != nil {
		return nil, err
	}
	log.WithComponent("vault").Info().Str("credential_id", cred.ID).Str("node_id", nodeID).Msg("credential created")
	return cred, nil
}

// Update merges new plaintext fields and/or VNC defaults into an
// existing credential, re-encrypting the blob. A certificate parse
// failure on a TLS update is rejected and leaves existing metadata
// intact.
func (v *Vault) Update(credentialID string, fields PlaintextFields, meta VNCDefaults) (*types.Credential, error) {
	cred, err := v.store.GetCredential(credentialID)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", credentialID, apperr.ErrNotFound)
	}

	existing, err := v.decryptFields(cred)
	if err != nil {
		return nil, err
	}
	for k, val := range fields {
		existing[k] = val
	}

	if cred.Type == types.CredentialTLS {
		if serverCert, ok := fields["server_cert"]; ok && serverCert != "" {
			tlsMeta, err := ParseTLSMetadata([]byte(serverCert))
			if err != nil {
				// Reject the update; leave existing metadata intact.
				return nil, fmt.Errorf("parse server certificate: %w: %w", err, apperr.ErrValidation)
			}
			cred.TLS = tlsMeta
		}
	}
	if cred.Type == types.CredentialVNC {
		cred.VNC = mergeVNCMetadata(cred.VNC, meta)
	}

	plaintext, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("marshal plaintext fields: %w", err)
	}
	ciphertext, err := encrypt(v.encryptionKey, plaintext)
	if err != nil {
		return nil, err
	}
	cred.Ciphertext = ciphertext
	cred.UpdatedAt = time.Now()

	if err := v.store.UpdateCredential(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// Delete removes a credential permanently.
func (v *Vault) Delete(credentialID string) error {
	if _, err := v.store.GetCredential(credentialID); err != nil {
		return fmt.Errorf("credential %s: %w", credentialID, apperr.ErrNotFound)
	}
	return v.store.DeleteCredential(credentialID)
}

// ConnectionInfo is the public (never-secret) view of a credential
// returned by GetConnectionInfo, plus an optional single-use token.
type ConnectionInfo struct {
	CredentialID string `json:"credential_id"`
	NodeID       string `json:"node_id"`
	Host         string `json:"host"`
	Port         int    `json:"port,omitempty"`
	WebsocketURL string `json:"websocket_url,omitempty"`
	Token        string `json:"token,omitempty"`
}

// GetConnectionInfo returns the credential's public fields. When
// issueToken is true it additionally mints a single-use access token
// good for 5 minutes and records last_used on the credential.
func (v *Vault) GetConnectionInfo(credentialID string, issueToken bool) (*ConnectionInfo, error) {
	cred, err := v.store.GetCredential(credentialID)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", credentialID, apperr.ErrNotFound)
	}
	node, err := v.store.GetNode(cred.NodeID)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", cred.NodeID, apperr.ErrNotFound)
	}

	info := &ConnectionInfo{
		CredentialID: cred.ID,
		NodeID:       cred.NodeID,
		Host:         node.IPAddress,
	}
	if cred.VNC != nil {
		info.Port = cred.VNC.VNCPort
		info.WebsocketURL = fmt.Sprintf("ws://%s:%d/websockify", node.IPAddress, cred.VNC.VNCPort)
	}

	if issueToken {
		info.Token = v.tokens.Issue(cred.ID)
		now := time.Now()
		cred.LastUsed = &now
		if err := v.store.UpdateCredential(cred); err != nil {
			return nil, err
		}
	}

	return info, nil
}

// ExchangeToken is the only egress point for plaintext secrets. The
// token is removed from the store on the first attempt, success or
// expiry (invariant I7 / property P2).
func (v *Vault) ExchangeToken(token string) (PlaintextFields, error) {
	credentialID, err := v.tokens.Exchange(token)
	if err != nil {
		return nil, err
	}
	cred, err := v.store.GetCredential(credentialID)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", credentialID, apperr.ErrNotFound)
	}
	return v.decryptFields(cred)
}

func (v *Vault) decryptFields(cred *types.Credential) (PlaintextFields, error) {
	plaintext, err := decrypt(v.encryptionKey, cred.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrDecrypt, err)
	}
	var fields PlaintextFields
	if err := json.Unmarshal(plaintext, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrDecrypt, err)
	}
	return fields, nil
}

// ListByNode returns a node's credentials, optionally only active ones.
func (v *Vault) ListByNode(nodeID string, activeOnly bool) ([]*types.Credential, error) {
	return v.store.ListCredentialsByNode(nodeID, activeOnly)
}

// FleetEndpoint is one row of ListFleetEndpoints: a credential joined
// with its owning node's address.
type FleetEndpoint struct {
	Credential *types.Credential `json:"credential"`
	NodeIP     string            `json:"node_ip"`
}

// ListFleetEndpoints returns every credential of the given type across
// the fleet, joined with its node's address.
func (v *Vault) ListFleetEndpoints(credType types.CredentialType, activeOnly bool) ([]FleetEndpoint, error) {
	creds, err := v.store.ListCredentialsByType(credType, activeOnly)
	if err != nil {
		return nil, err
	}
	endpoints := make([]FleetEndpoint, 0, len(creds))
	for _, c := range creds {
		node, err := v.store.GetNode(c.NodeID)
		if err != nil {
			continue
		}
		endpoints = append(endpoints, FleetEndpoint{Credential: c, NodeIP: node.IPAddress})
	}
	return endpoints, nil
}

// ListExpiringTLS returns active TLS credentials expiring within the
// given number of days.
func (v *Vault) ListExpiringTLS(days int) ([]*types.Credential, error) {
	creds, err := v.store.ListCredentialsByType(types.CredentialTLS, true)
	if err != nil {
		return nil, err
	}
	var expiring []*types.Credential
	for _, c := range creds {
		if c.TLS != nil && c.TLS.DaysUntilExpiry() <= days {
			expiring = append(expiring, c)
		}
	}
	return expiring, nil
}

// credentialID derives a stable identifier from (node, type, name),
// matching the source's hash-based ID generation so creating the same
// named credential twice naturally collides before the store is
// touched, rather than producing two silently-distinct rows.
func credentialID(nodeID, credType, name string) string {
	h := sha256.Sum256([]byte(nodeID + "/" + credType + "/" + name))
	return base64.URLEncoding.EncodeToString(h[:16])
}
