// ABOUTME: Catalog of bookable resources known to the backend
// ABOUTME: Ships a default catalog and loads overrides from a YAML file

package booking

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Resource is a bookable item such as a meeting room
type Resource struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Catalog is the fixed set of resources a booking can target
type Catalog struct {
	Resources []Resource `yaml:"resources" json:"resources"`
}

// DefaultCatalog returns the resources the backend ships with
func DefaultCatalog() Catalog {
	return Catalog{Resources: []Resource{
		{ID: 1, Name: "Meeting Room A"},
		{ID: 2, Name: "Meeting Room B"},
		{ID: 3, Name: "Projector"},
	}}
}

// LoadCatalog reads a YAML catalog file of the form:
//
//	resources:
//	  - id: 1
//	    name: Meeting Room A
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read resource catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a YAML catalog
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("invalid resource catalog: %w", err)
	}
	if len(c.Resources) == 0 {
		return Catalog{}, fmt.Errorf("invalid resource catalog: no resources defined")
	}

	seen := make(map[int]bool, len(c.Resources))
	for _, r := range c.Resources {
		if r.ID <= 0 {
			return Catalog{}, fmt.Errorf("invalid resource catalog: id must be positive, got %d", r.ID)
		}
		if seen[r.ID] {
			return Catalog{}, fmt.Errorf("invalid resource catalog: duplicate id %d", r.ID)
		}
		seen[r.ID] = true
	}

	sort.Slice(c.Resources, func(i, j int) bool { return c.Resources[i].ID < c.Resources[j].ID })
	return c, nil
}

// Contains reports whether id names a resource in the catalog
func (c Catalog) Contains(id int) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Lookup returns the resource with the given id
func (c Catalog) Lookup(id int) (Resource, bool) {
	for _, r := range c.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// Name returns a display name for id, falling back to "Resource #id"
func (c Catalog) Name(id int) string {
	if r, ok := c.Lookup(id); ok && r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("Resource #%d", id)
}
