package sites

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/refframe/model"
)

// internal JSON shapes, unexported so the file format can evolve.
type catalogueJSON struct {
	Sites []siteJSON `json:"sites"`
}

type siteJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
}

// Load reads a JSON site catalogue from r into reg and returns the IDs added,
// in file order. Sites already present are replaced. Loading stops at the
// first invalid site; sites before it stay loaded.
//
//	{"sites": [{"id": "ksc", "latitude": 28.5, "longitude": -80.6, "altitude": 3}]}
func Load(reg *Registry, r io.Reader) ([]string, error) {
	if reg == nil {
		return nil, fmt.Errorf("sites.Load: registry is nil")
	}

	var payload catalogueJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("sites.Load: decode failed: %w", err)
	}

	ids := make([]string, 0, len(payload.Sites))
	for i, js := range payload.Sites {
		site := model.Site{
			ID:        js.ID,
			Name:      js.Name,
			Latitude:  js.Latitude,
			Longitude: js.Longitude,
			Altitude:  js.Altitude,
			Heading:   js.Heading,
		}
		if err := reg.Put(site); err != nil {
			return ids, fmt.Errorf("sites.Load: site %d: %w", i, err)
		}
		ids = append(ids, js.ID)
	}
	return ids, nil
}

// LoadFile is Load over the named file.
func LoadFile(reg *Registry, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site catalogue: %w", err)
	}
	defer f.Close()
	return Load(reg, f)
}
