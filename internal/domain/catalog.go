package domain

// Board is a visual template from the external catalog. The catalog is
// owned by the collaborating API; these records are read-only here.
type Board struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Cardset selects the card content shown on a board.
type Cardset struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count,omitempty"`
}

// Catalog bundles the selectable boards and cardsets.
type Catalog struct {
	Boards   []Board   `json:"boards"`
	Cardsets []Cardset `json:"cardsets"`
}

// Board returns the board with the given key, nil when absent.
func (c *Catalog) Board(key string) *Board {
	for i := range c.Boards {
		if c.Boards[i].Key == key {
			return &c.Boards[i]
		}
	}
	return nil
}

// Cardset returns the cardset with the given key, nil when absent.
func (c *Catalog) Cardset(key string) *Cardset {
	for i := range c.Cardsets {
		if c.Cardsets[i].Key == key {
			return &c.Cardsets[i]
		}
	}
	return nil
}
