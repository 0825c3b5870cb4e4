package entity

// Reward is a read-only catalog entry that points can be spent on.
type Reward struct {
	ID    string `json:"id" yaml:"id"`
	Image string `json:"image" yaml:"image"`
	Name  string `json:"name" yaml:"name"`
	Cost  int    `json:"cost" yaml:"cost"`
}

// DefaultRewards is the catalog used when none is configured.
func DefaultRewards() []Reward {
	return []Reward{
		{ID: "reward1", Image: "https://via.placeholder.com/150", Name: "Reward 1", Cost: 100},
		{ID: "reward2", Image: "https://via.placeholder.com/150", Name: "Reward 2", Cost: 200},
	}
}
