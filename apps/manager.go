package apps

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/rqzrqh/compute_market/dao"
	"github.com/rqzrqh/compute_market/notify"
	"golang.org/x/xerrors"
)

// EventNewDefinition is published once per definition first seen by this
// node.
const EventNewDefinition = "app.new_definition"

// Manager tracks the registered task apps. Definitions live in memory and
// as JSON files under the app dir; the enabled flags persist in States.
type Manager struct {
	appDir string
	states *States
	pub    notify.Publisher

	mu           sync.Mutex
	apps         map[AppID]AppDefinition
	order        []AppID
	appFileNames map[AppID]string
}

// NewManager loads every definition already present in appDir. Catalog
// refresh happens separately through UpdateApps.
func NewManager(d *dao.Dao, pub notify.Publisher, appDir string) (*Manager, error) {
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, err
	}

	m := &Manager{
		appDir:       appDir,
		states:       NewStates(d),
		pub:          pub,
		apps:         make(map[AppID]AppDefinition),
		appFileNames: make(map[AppID]string),
	}

	loaded, err := LoadAppsFromDir(appDir)
	if err != nil {
		return nil, err
	}

	for _, la := range loaded {
		if err := m.Register(la.Definition); err != nil {
			log.Warnf("skipping app from %v:%v", la.Path, err)
			continue
		}
		m.appFileNames[la.Definition.ID()] = la.Path
	}

	return m, nil
}

func (m *Manager) Registered(id AppID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exist := m.apps[id]
	return exist
}

// Register adds a definition. The enabled flag starts false unless an
// earlier run already stored one.
func (m *Manager) Register(def AppDefinition) error {
	id := def.ID()
	if id == "" {
		return xerrors.New("cannot derive app id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exist := m.apps[id]; exist {
		return ErrAlreadyRegistered
	}

	known, err := m.states.Contains(id)
	if err != nil {
		return err
	}
	if !known {
		if err := m.states.Set(id, false); err != nil {
			return err
		}
	}

	m.apps[id] = def
	m.order = append(m.order, id)

	enabled, _ := m.states.Get(id)
	log.Infow("application registered",
		"name", def.Name, "version", def.Version, "enabled", enabled, "id", id)
	return nil
}

// Enabled reports whether the app is registered and switched on.
func (m *Manager) Enabled(id AppID) bool {
	if !m.Registered(id) {
		return false
	}

	enabled, err := m.states.Get(id)
	if err != nil {
		return false
	}
	return enabled
}

func (m *Manager) SetEnabled(id AppID, enabled bool) error {
	if !m.Registered(id) {
		return ErrNotRegistered
	}

	if err := m.states.Set(id, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	log.Infow("application "+state, "id", id)
	return nil
}

// Apps returns the registered definitions in registration order.
func (m *Manager) Apps() []AppDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]AppDefinition, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.apps[id])
	}
	return out
}

func (m *Manager) App(id AppID) (AppDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, exist := m.apps[id]
	if !exist {
		return AppDefinition{}, ErrNotRegistered
	}
	return def, nil
}

// EnabledEnvironments returns the distinct requestor environments of the
// enabled apps, sorted. An environment counts as enabled when any app
// providing it is.
func (m *Manager) EnabledEnvironments() []string {
	m.mu.Lock()
	defs := make([]AppDefinition, 0, len(m.order))
	for _, id := range m.order {
		defs = append(defs, m.apps[id])
	}
	m.mu.Unlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, def := range defs {
		if def.RequestorEnv == "" || seen[def.RequestorEnv] {
			continue
		}

		enabled, err := m.states.Get(def.ID())
		if err != nil || !enabled {
			continue
		}

		seen[def.RequestorEnv] = true
		out = append(out, def.RequestorEnv)
	}

	sort.Strings(out)
	return out
}

func (m *Manager) EnvironmentEnabled(env string) bool {
	for _, v := range m.EnabledEnvironments() {
		if v == env {
			return true
		}
	}
	return false
}

// Delete forgets the app: state row, in-memory definition and definition
// file.
func (m *Manager) Delete(id AppID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exist := m.apps[id]; !exist {
		return ErrNotRegistered
	}

	if err := m.states.Delete(id); err != nil && !xerrors.Is(err, dao.ErrNotFound) {
		return err
	}

	delete(m.apps, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	if path, exist := m.appFileNames[id]; exist {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("remove app file %v failed:%v", path, err)
		}
		delete(m.appFileNames, id)
	}

	log.Infow("application deleted", "id", id)
	return nil
}

// UpdateApps pulls definitions from the catalog, registers the ones not
// seen before, saves them to the app dir and publishes one event per new
// definition. The catalog error is returned so the caller can decide about
// the connection; everything fetched before the failure is still applied.
func (m *Manager) UpdateApps(ctx context.Context, catalog CatalogAPI) error {
	known := make(map[AppID]bool)
	m.mu.Lock()
	for id := range m.apps {
		known[id] = true
	}
	m.mu.Unlock()

	newDefs, err := downloadDefinitions(ctx, catalog, known)
	if err != nil {
		log.Errorf("failed to download new app definitions:%v", err)
		return err
	}

	for _, def := range newDefs {
		id := def.ID()
		log.Infow("new application definition downloaded",
			"name", def.Name, "version", def.Version, "id", id)

		if err := m.Register(def); err != nil {
			if !xerrors.Is(err, ErrAlreadyRegistered) {
				log.Warnf("register downloaded app %v failed:%v", id, err)
			}
			continue
		}

		path, err := SaveAppToDir(m.appDir, def)
		if err != nil {
			log.Warnf("save app definition %v failed:%v", id, err)
		} else {
			m.mu.Lock()
			m.appFileNames[id] = path
			m.mu.Unlock()
		}

		m.pub.Publish(ctx, EventNewDefinition, def)
	}

	return nil
}

// downloadDefinitions lists the catalog and keeps the unseen definitions
// whose derived content id matches the claimed one.
func downloadDefinitions(ctx context.Context, catalog CatalogAPI, known map[AppID]bool) ([]AppDefinition, error) {
	entries, err := catalog.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	var out []AppDefinition
	for _, e := range entries {
		id := e.Definition.ID()
		if id == "" || id != e.ID {
			log.Warnf("catalog definition failed content id check, skipping. claimed=%v derived=%v", e.ID, id)
			continue
		}
		if known[id] {
			continue
		}
		out = append(out, e.Definition)
	}

	return out, nil
}
