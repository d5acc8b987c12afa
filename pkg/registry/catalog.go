package registry

import (
	"fmt"
	"os"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/types"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a Role Catalog seed file
// (ROLES_FILE). Operators check this in alongside their fleet config
// rather than POSTing roles one at a time on every fresh deployment.
type catalogFile struct {
	Roles []catalogRole `yaml:"roles"`
}

type catalogRole struct {
	Name           string   `yaml:"name"`
	SourcePaths    []string `yaml:"source_paths"`
	TargetPath     string   `yaml:"target_path"`
	PostSyncCmd    string   `yaml:"post_sync_cmd,omitempty"`
	AutoRestart    bool     `yaml:"auto_restart"`
	SystemdService string   `yaml:"systemd_service,omitempty"`
}

// SeedRoleCatalog loads a YAML role catalog from path and creates any
// role not already present by name. Existing roles are left untouched
// — this seeds defaults, it does not reconcile drift.
func (r *Registry) SeedRoleCatalog(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read role catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse role catalog %s: %w", path, err)
	}

	seeded := 0
	for _, cr := range file.Roles {
		if cr.Name == "" {
			return seeded, fmt.Errorf("role catalog %s: entry missing name: %w", path, apperr.ErrValidation)
		}
		if _, err := r.store.GetRole(cr.Name); err == nil {
			continue // already present, defaults don't override operator edits
		}
		role := &types.Role{
			Name:           cr.Name,
			SourcePaths:    cr.SourcePaths,
			TargetPath:     cr.TargetPath,
			PostSyncCmd:    cr.PostSyncCmd,
			AutoRestart:    cr.AutoRestart,
			SystemdService: cr.SystemdService,
		}
		if err := r.CreateRole(role); err != nil {
			return seeded, fmt.Errorf("seed role %s: %w", cr.Name, err)
		}
		seeded++
	}
	return seeded, nil
}
