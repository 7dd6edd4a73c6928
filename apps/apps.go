package apps

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/xerrors"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("apps")

var (
	// ErrAlreadyRegistered rejects a second registration of the same app.
	ErrAlreadyRegistered = xerrors.New("app already registered")
	// ErrNotRegistered is returned for operations on unknown apps.
	ErrNotRegistered = xerrors.New("app not registered")
)

type AppID string

// AppDefinition describes one task app. Definitions are immutable: any field
// change yields a different id.
type AppDefinition struct {
	Name              string  `json:"name"`
	RequestorEnv      string  `json:"requestor_env"`
	MarketStrategy    string  `json:"market_strategy"`
	MaxBenchmarkScore float64 `json:"max_benchmark_score"`
	Version           string  `json:"version"`
	Description       string  `json:"description,omitempty"`
	Author            string  `json:"author,omitempty"`
	License           string  `json:"license,omitempty"`
	BundleCID         string  `json:"bundle_cid,omitempty"`
}

// ID derives the content id of the canonical JSON encoding, so identical
// definitions get identical ids on every node.
func (a AppDefinition) ID() AppID {
	data, err := json.Marshal(&a)
	if err != nil {
		return ""
	}

	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return ""
	}

	return AppID(cid.NewCidV1(cid.Raw, mh).String())
}

func (a AppDefinition) JSONFileName() string {
	name := strings.ReplaceAll(strings.ToLower(a.Name), " ", "_")
	return fmt.Sprintf("%s_%s.json", name, a.Version)
}

type LoadedApp struct {
	Path       string
	Definition AppDefinition
}

// LoadAppsFromDir reads every definition file in dir. Malformed files are
// skipped with a warning, they never abort the load.
func LoadAppsFromDir(dir string) ([]LoadedApp, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []LoadedApp
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("read app definition %v failed:%v", path, err)
			continue
		}

		var def AppDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			log.Warnf("skipping malformed app definition %v:%v", path, err)
			continue
		}

		out = append(out, LoadedApp{Path: path, Definition: def})
	}

	return out, nil
}

// SaveAppToDir writes the definition file and returns its path.
func SaveAppToDir(dir string, def AppDefinition) (string, error) {
	data, err := json.MarshalIndent(&def, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, def.JSONFileName())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
