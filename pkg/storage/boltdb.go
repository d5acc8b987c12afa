package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketNodes        = []byte("nodes")
	bucketRoles        = []byte("roles")
	bucketNodeRoles    = []byte("node_roles")
	bucketCodeSources  = []byte("code_sources")
	bucketCredentials  = []byte("credentials")
	bucketSchedules    = []byte("schedules")
	bucketPlaybookRuns = []byte("playbook_runs")
)

// BoltStore implements Store on top of an embedded BoltDB file, one
// bucket per entity, JSON-marshaled values keyed by the entity's ID.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if necessary) the fleet control plane's
// database file under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "fleetctl.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{
			bucketNodes, bucketRoles, bucketNodeRoles, bucketCodeSources,
			bucketCredentials, bucketSchedules, bucketPlaybookRuns,
		} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// --- Nodes ---

func (s *BoltStore) CreateNode(node *types.Node) error {
	return s.put(bucketNodes, node.ID, node)
}

func (s *BoltStore) GetNode(id string) (*types.Node, error) {
	var node types.Node
	if err := s.get(bucketNodes, id, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *BoltStore) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	err := s.forEach(bucketNodes, func(data []byte) error {
		var node types.Node
		if err := json.Unmarshal(data, &node); err != nil {
			return err
		}
		nodes = append(nodes, &node)
		return nil
	})
	return nodes, err
}

func (s *BoltStore) UpdateNode(node *types.Node) error {
	return s.CreateNode(node)
}

func (s *BoltStore) DeleteNode(id string) error {
	return s.delete(bucketNodes, id)
}

// --- Roles ---

func (s *BoltStore) CreateRole(role *types.Role) error {
	return s.put(bucketRoles, role.Name, role)
}

func (s *BoltStore) GetRole(name string) (*types.Role, error) {
	var role types.Role
	if err := s.get(bucketRoles, name, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *BoltStore) ListRoles() ([]*types.Role, error) {
	var roles []*types.Role
	err := s.forEach(bucketRoles, func(data []byte) error {
		var role types.Role
		if err := json.Unmarshal(data, &role); err != nil {
			return err
		}
		roles = append(roles, &role)
		return nil
	})
	return roles, err
}

func (s *BoltStore) UpdateRole(role *types.Role) error {
	return s.CreateRole(role)
}

func (s *BoltStore) DeleteRole(name string) error {
	return s.delete(bucketRoles, name)
}

// --- NodeRoles ---

func (s *BoltStore) UpsertNodeRole(nr *types.NodeRole) error {
	return s.put(bucketNodeRoles, types.NodeRoleKey(nr.NodeID, nr.RoleName), nr)
}

func (s *BoltStore) GetNodeRole(nodeID, roleName string) (*types.NodeRole, error) {
	var nr types.NodeRole
	if err := s.get(bucketNodeRoles, types.NodeRoleKey(nodeID, roleName), &nr); err != nil {
		return nil, err
	}
	return &nr, nil
}

func (s *BoltStore) ListNodeRoles() ([]*types.NodeRole, error) {
	var all []*types.NodeRole
	err := s.forEach(bucketNodeRoles, func(data []byte) error {
		var nr types.NodeRole
		if err := json.Unmarshal(data, &nr); err != nil {
			return err
		}
		all = append(all, &nr)
		return nil
	})
	return all, err
}

func (s *BoltStore) ListNodeRolesByNode(nodeID string) ([]*types.NodeRole, error) {
	all, err := s.ListNodeRoles()
	if err != nil {
		return nil, err
	}
	var filtered []*types.NodeRole
	for _, nr := range all {
		if nr.NodeID == nodeID {
			filtered = append(filtered, nr)
		}
	}
	return filtered, nil
}

func (s *BoltStore) DeleteNodeRole(nodeID, roleName string) error {
	return s.delete(bucketNodeRoles, types.NodeRoleKey(nodeID, roleName))
}

// --- CodeSources ---

func (s *BoltStore) CreateCodeSource(cs *types.CodeSource) error {
	return s.put(bucketCodeSources, cs.ID, cs)
}

func (s *BoltStore) GetCodeSource(id string) (*types.CodeSource, error) {
	var cs types.CodeSource
	if err := s.get(bucketCodeSources, id, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *BoltStore) GetActiveCodeSource() (*types.CodeSource, error) {
	sources, err := s.ListCodeSources()
	if err != nil {
		return nil, err
	}
	for _, cs := range sources {
		if cs.IsActive {
			return cs, nil
		}
	}
	return nil, fmt.Errorf("active code source: %w", apperr.ErrNotFound)
}

func (s *BoltStore) ListCodeSources() ([]*types.CodeSource, error) {
	var all []*types.CodeSource
	err := s.forEach(bucketCodeSources, func(data []byte) error {
		var cs types.CodeSource
		if err := json.Unmarshal(data, &cs); err != nil {
			return err
		}
		all = append(all, &cs)
		return nil
	})
	return all, err
}

// SetActiveCodeSource deactivates whatever is currently active and
// activates id in a single transaction, per invariant I1.
func (s *BoltStore) SetActiveCodeSource(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCodeSources)
		var target *types.CodeSource
		err := b.ForEach(func(k, v []byte) error {
			var cs types.CodeSource
			if err := json.Unmarshal(v, &cs); err != nil {
				return err
			}
			if cs.ID == id {
				cs.IsActive = true
				target = &cs
			} else if cs.IsActive {
				cs.IsActive = false
				data, err := json.Marshal(&cs)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(cs.ID), data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("code source %s: %w", id, apperr.ErrNotFound)
		}
		data, err := json.Marshal(target)
		if err != nil {
			return err
		}
		return b.Put([]byte(target.ID), data)
	})
}

// --- Credentials ---

func (s *BoltStore) CreateCredential(c *types.Credential) error {
	return s.put(bucketCredentials, c.ID, c)
}

func (s *BoltStore) GetCredential(id string) (*types.Credential, error) {
	var c types.Credential
	if err := s.get(bucketCredentials, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *BoltStore) FindCredentialByNodeAndName(nodeID, name string) (*types.Credential, error) {
	all, err := s.listAllCredentials()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.NodeID == nodeID && c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("credential %s/%s: %w", nodeID, name, apperr.ErrNotFound)
}

func (s *BoltStore) ListCredentialsByNode(nodeID string, activeOnly bool) ([]*types.Credential, error) {
	all, err := s.listAllCredentials()
	if err != nil {
		return nil, err
	}
	var filtered []*types.Credential
	for _, c := range all {
		if c.NodeID == nodeID && (!activeOnly || c.IsActive) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *BoltStore) ListCredentialsByType(t types.CredentialType, activeOnly bool) ([]*types.Credential, error) {
	all, err := s.listAllCredentials()
	if err != nil {
		return nil, err
	}
	var filtered []*types.Credential
	for _, c := range all {
		if c.Type == t && (!activeOnly || c.IsActive) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *BoltStore) listAllCredentials() ([]*types.Credential, error) {
	var all []*types.Credential
	err := s.forEach(bucketCredentials, func(data []byte) error {
		var c types.Credential
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		all = append(all, &c)
		return nil
	})
	return all, err
}

func (s *BoltStore) UpdateCredential(c *types.Credential) error {
	return s.CreateCredential(c)
}

func (s *BoltStore) DeleteCredential(id string) error {
	return s.delete(bucketCredentials, id)
}

// --- Schedules ---

func (s *BoltStore) CreateSchedule(sc *types.Schedule) error {
	return s.put(bucketSchedules, sc.ID, sc)
}

func (s *BoltStore) GetSchedule(id string) (*types.Schedule, error) {
	var sc types.Schedule
	if err := s.get(bucketSchedules, id, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *BoltStore) ListSchedules() ([]*types.Schedule, error) {
	var all []*types.Schedule
	err := s.forEach(bucketSchedules, func(data []byte) error {
		var sc types.Schedule
		if err := json.Unmarshal(data, &sc); err != nil {
			return err
		}
		all = append(all, &sc)
		return nil
	})
	return all, err
}

func (s *BoltStore) UpdateSchedule(sc *types.Schedule) error {
	return s.CreateSchedule(sc)
}

func (s *BoltStore) DeleteSchedule(id string) error {
	return s.delete(bucketSchedules, id)
}

// --- PlaybookRuns ---

func (s *BoltStore) CreatePlaybookRun(r *types.PlaybookRun) error {
	return s.put(bucketPlaybookRuns, r.RunID, r)
}

func (s *BoltStore) GetPlaybookRun(runID string) (*types.PlaybookRun, error) {
	var r types.PlaybookRun
	if err := s.get(bucketPlaybookRuns, runID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *BoltStore) ListPlaybookRuns() ([]*types.PlaybookRun, error) {
	var all []*types.PlaybookRun
	err := s.forEach(bucketPlaybookRuns, func(data []byte) error {
		var r types.PlaybookRun
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		all = append(all, &r)
		return nil
	})
	return all, err
}

func (s *BoltStore) UpdatePlaybookRun(r *types.PlaybookRun) error {
	return s.CreatePlaybookRun(r)
}

// --- generic helpers ---

func (s *BoltStore) put(bucket []byte, key string, v any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *BoltStore) get(bucket []byte, key string, v any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s %s: %w", bucket, key, apperr.ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

func (s *BoltStore) delete(bucket []byte, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

func (s *BoltStore) forEach(bucket []byte, fn func(data []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			return fn(v)
		})
	})
}
