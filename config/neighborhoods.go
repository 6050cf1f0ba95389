package config

// Neighborhood pairs a display name with the search term sent upstream.
type Neighborhood struct {
	Name  string `json:"name" yaml:"name"`
	Query string `json:"query" yaml:"query"`
}

// DefaultNeighborhoods is the list of São Paulo neighborhoods tracked when
// no neighborhoods file is configured.
var DefaultNeighborhoods = []Neighborhood{
	{Name: "Pinheiros", Query: "Pinheiros"},
	{Name: "Vila Madalena", Query: "Vila Madalena"},
	{Name: "Moema", Query: "Moema"},
	{Name: "Saúde", Query: "Saúde"},
}

// GetNeighborhoodNames returns the display names of a neighborhood list
func GetNeighborhoodNames(neighborhoods []Neighborhood) []string {
	names := make([]string, len(neighborhoods))
	for i, n := range neighborhoods {
		names[i] = n.Name
	}
	return names
}

// GetNeighborhoodByName returns a neighborhood by display name
func GetNeighborhoodByName(neighborhoods []Neighborhood, name string) *Neighborhood {
	for _, n := range neighborhoods {
		if n.Name == name {
			return &n
		}
	}
	return nil
}
