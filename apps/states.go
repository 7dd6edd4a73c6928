package apps

import "github.com/rqzrqh/compute_market/dao"

// States is the persistent per-app enabled flag. Lookups on unknown apps
// return dao.ErrNotFound rather than a silent default.
type States struct {
	dao *dao.Dao
}

func NewStates(d *dao.Dao) *States {
	return &States{dao: d}
}

func (s *States) Contains(id AppID) (bool, error) {
	return s.dao.AppStateContains(string(id))
}

func (s *States) Get(id AppID) (bool, error) {
	return s.dao.GetAppEnabled(string(id))
}

func (s *States) Set(id AppID, enabled bool) error {
	return s.dao.SetAppEnabled(string(id), enabled)
}

func (s *States) Delete(id AppID) error {
	return s.dao.DeleteAppState(string(id))
}
