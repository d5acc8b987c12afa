/*
Package security implements the Credential Vault: encrypted-at-rest
storage for the three secret types the fleet control plane manages
(SSH passwords, TLS certificate bundles, VNC credentials) and the
single-use access-token exchange that is the only way plaintext ever
leaves the vault.

# Architecture

	┌─────────────────────────── VAULT ────────────────────────────┐
	│                                                                │
	│  Create/Update(plaintext) ──► AES-256-GCM encrypt ──► Store   │
	│                                                                │
	│  GetConnectionInfo(issue_token=true)                          │
	│        │                                                      │
	│        ▼                                                      │
	│  TokenStore.Issue ──► random 256-bit token, 5 min TTL         │
	│        │                                                      │
	│        ▼                                                      │
	│  ExchangeToken(token) ──► pop-on-read ──► decrypt ──► plaintext│
	│                                                                │
	└────────────────────────────────────────────────────────────────┘

Plaintext enters the vault only through Create/Update and leaves it
only through ExchangeToken. No read path — GetConnectionInfo,
ListByNode, ListFleetEndpoints, ListExpiringTLS — ever returns
ciphertext's decrypted contents (property P1).

# Encryption

A single process-wide 32-byte key, supplied via configuration
(ENCRYPTION_KEY, base64), encrypts every credential's plaintext fields
(JSON-marshaled) with AES-256-GCM; the nonce is prepended to the
ciphertext so decryption needs no side channel. Decryption failure
(wrong key, corrupted blob) surfaces as ErrDecrypt and never falls back
to treating ciphertext as plaintext.

# TLS metadata

On create/update of a TLS credential, the server certificate's PEM is
parsed once to populate queryable fields (CN, subject, issuer, serial,
validity window, SHA-256 fingerprint of the DER form, SAN). A parse
failure on update rejects the update and leaves the existing metadata
untouched rather than silently dropping it.

# Access tokens

TokenStore is the vault's only other piece of shared mutable state
besides the credential rows themselves. Tokens are single-use by
construction: Exchange always deletes the map entry before inspecting
it, so a concurrent double-exchange can only ever let one caller win.

# See also

SPEC_FULL.md §4.1 for the full contract; DESIGN.md for why this package
builds encryption and certificate parsing on the standard library
rather than a third-party crypto dependency.
*/
package security
