// Package types defines the entities of the fleet control plane's data
// model: nodes, roles, assignments, credentials, schedules, and playbook
// runs.
package types

import "time"

// Node is a member of the managed fleet, reachable over SSH.
type Node struct {
	ID                 string            `json:"id"`
	IPAddress          string            `json:"ip_address"`
	Hostname           string            `json:"hostname"`
	SSHUser            string            `json:"ssh_user"`
	SSHPort            int               `json:"ssh_port"`
	Roles              []string          `json:"roles"`
	CodeStatus         CodeStatus        `json:"code_status"`
	CurrentCodeVersion string            `json:"current_code_version"`
	ExtraData          map[string]any    `json:"extra_data,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// CodeStatus tracks how fresh a Node's deployed code is believed to be.
type CodeStatus string

const (
	CodeStatusUpToDate CodeStatus = "UP_TO_DATE"
	CodeStatusOutdated CodeStatus = "OUTDATED"
	CodeStatusSyncing  CodeStatus = "SYNCING"
	CodeStatusFailed   CodeStatus = "FAILED"
	CodeStatusUnknown  CodeStatus = "UNKNOWN"
)

// DefaultSSHPort is used when a Node does not specify one.
const DefaultSSHPort = 22

// Role is a unit of code responsibility a Node can be assigned.
type Role struct {
	Name           string    `json:"name"`
	SourcePaths    []string  `json:"source_paths"`
	TargetPath     string    `json:"target_path"`
	PostSyncCmd    string    `json:"post_sync_cmd,omitempty"`
	AutoRestart    bool      `json:"auto_restart"`
	SystemdService string    `json:"systemd_service,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NPURoleName is assigned NPU-specific extra_data on the owning Node.
const NPURoleName = "npu-worker"

// NodeRole is the assignment row (node_id, role_name).
type NodeRole struct {
	NodeID         string           `json:"node_id"`
	RoleName       string           `json:"role_name"`
	AssignmentType AssignmentType   `json:"assignment_type"`
	Status         NodeRoleStatus   `json:"status"`
	CurrentVersion string           `json:"current_version"`
	LastSyncedAt   *time.Time       `json:"last_synced_at,omitempty"`
}

// AssignmentType distinguishes operator-driven from automatic assignment.
type AssignmentType string

const (
	AssignmentAuto   AssignmentType = "AUTO"
	AssignmentManual AssignmentType = "MANUAL"
)

// NodeRoleStatus is the lifecycle state of a NodeRole assignment.
type NodeRoleStatus string

const (
	NodeRoleStatusPending NodeRoleStatus = "PENDING"
	NodeRoleStatusSyncing NodeRoleStatus = "SYNCING"
	NodeRoleStatusActive  NodeRoleStatus = "ACTIVE"
	NodeRoleStatusFailed  NodeRoleStatus = "FAILED"
	NodeRoleStatusDisabled NodeRoleStatus = "DISABLED"
)

// NodeRoleKey formats the composite identity used as a storage key.
func NodeRoleKey(nodeID, roleName string) string {
	return nodeID + "/" + roleName
}

// CodeSource identifies the node source code is pulled from. Exactly one
// row has IsActive=true at any time (invariant I1).
type CodeSource struct {
	ID              string    `json:"id"`
	NodeID          string    `json:"node_id"`
	RepoPath        string    `json:"repo_path"`
	IsActive        bool      `json:"is_active"`
	LastKnownCommit string    `json:"last_known_commit,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CredentialType enumerates the kinds of secret the Vault stores.
type CredentialType string

const (
	CredentialSSH CredentialType = "SSH"
	CredentialTLS CredentialType = "TLS"
	CredentialVNC CredentialType = "VNC"
)

// Credential is an encrypted-at-rest secret bound to a Node. Ciphertext is
// the only form in which plaintext ever reaches storage (invariant I3).
type Credential struct {
	ID         string         `json:"id"`
	NodeID     string         `json:"node_id"`
	Type       CredentialType `json:"type"`
	Name       string         `json:"name"`
	Ciphertext []byte         `json:"ciphertext"`
	IsActive   bool           `json:"is_active"`
	LastUsed   *time.Time     `json:"last_used,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	// TLS-only queryable metadata, populated from the parsed certificate.
	TLS *TLSMetadata `json:"tls,omitempty"`

	// VNC-only queryable metadata.
	VNC *VNCMetadata `json:"vnc,omitempty"`
}

// TLSMetadata is extracted from a TLS credential's server certificate.
type TLSMetadata struct {
	CommonName   string    `json:"common_name"`
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	SerialNumber string    `json:"serial_number"`
	NotBefore    time.Time `json:"not_before"`
	NotAfter     time.Time `json:"not_after"`
	Fingerprint  string    `json:"fingerprint"` // SHA-256 of the DER form
	SAN          []string  `json:"san"`
}

// DaysUntilExpiry returns the whole number of days until NotAfter, as of now.
func (m TLSMetadata) DaysUntilExpiry() int {
	return int(time.Until(m.NotAfter).Hours() / 24)
}

// VNCMetadata carries the connection parameters for a VNC credential.
type VNCMetadata struct {
	Port          int `json:"port"`
	DisplayNumber int `json:"display_number"`
	VNCPort       int `json:"vnc_port"` // 5900 + DisplayNumber unless overridden
}

// VNCPortBase is added to the display number to derive VNCPort (invariant I4).
const VNCPortBase = 5900

// Schedule is a cron-expressed recurring sync intent over a node filter.
type Schedule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CronExpression   string          `json:"cron_expression"`
	Enabled          bool            `json:"enabled"`
	TargetType       TargetType      `json:"target_type"`
	TargetNodes      []string        `json:"target_nodes,omitempty"`
	RestartAfterSync bool            `json:"restart_after_sync"`
	RestartStrategy  RestartStrategy `json:"restart_strategy"`
	LastRun          *time.Time      `json:"last_run,omitempty"`
	NextRun          *time.Time      `json:"next_run,omitempty"`
	LastRunStatus    RunStatus       `json:"last_run_status,omitempty"`
	LastRunMessage   string          `json:"last_run_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TargetType selects which nodes a Schedule applies to.
type TargetType string

const (
	TargetAll      TargetType = "ALL"
	TargetSpecific TargetType = "SPECIFIC"
	TargetFilter   TargetType = "FILTER"
)

// RestartStrategy controls inter-node pacing during a fan-out.
type RestartStrategy string

const (
	RestartSequential RestartStrategy = "SEQUENTIAL"
	RestartRolling    RestartStrategy = "ROLLING"
	RestartParallel   RestartStrategy = "PARALLEL"
)

// RollingPaceInterval is the minimum sleep between nodes under ROLLING.
const RollingPaceInterval = 2 * time.Second

// RunStatus is the outcome of the most recent schedule firing.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// PlaybookRunState is the lifecycle state of a PlaybookRun.
type PlaybookRunState string

const (
	PlaybookQueued    PlaybookRunState = "QUEUED"
	PlaybookRunning   PlaybookRunState = "RUNNING"
	PlaybookSucceeded PlaybookRunState = "SUCCEEDED"
	PlaybookFailed    PlaybookRunState = "FAILED"
	PlaybookCancelled PlaybookRunState = "CANCELLED"
)

// PlaybookRun tracks one operator-invoked Ansible playbook execution.
type PlaybookRun struct {
	RunID          string            `json:"run_id"`
	PlaybookName   string            `json:"playbook_name"`
	Targets        []string          `json:"targets,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	ExtraVars      map[string]string `json:"extra_vars,omitempty"`
	CheckMode      bool              `json:"check_mode"`
	State          PlaybookRunState  `json:"state"`
	ReturnCode     int               `json:"return_code"`
	Output         []string          `json:"output"`
	ProgressEvents []ProgressEvent   `json:"progress_events"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
}

// ProgressEvent is a structured update emitted while a long-running
// operation (currently only Playbook Runner) streams its progress.
type ProgressEvent struct {
	OpID      string    `json:"op_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
