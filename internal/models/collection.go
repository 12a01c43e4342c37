package models

import (
	"encoding/json"
	"fmt"
)

// ItemType discriminates collection item references.
type ItemType string

const (
	ItemStory ItemType = "story"
	ItemCode  ItemType = "code"
)

// Valid reports whether t is a known discriminator.
func (t ItemType) Valid() bool {
	return t == ItemStory || t == ItemCode
}

// CollectionItem is a tagged reference to a story or a code project.
// Referential integrity is not enforced at write time; resolution sites
// match exhaustively on Type and skip dangling ids.
type CollectionItem struct {
	Type ItemType `json:"type"`
	ID   int      `json:"id"`
}

func (i *CollectionItem) UnmarshalJSON(data []byte) error {
	type raw CollectionItem
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if !ItemType(r.Type).Valid() {
		return fmt.Errorf("collection item: unknown type %q", r.Type)
	}
	*i = CollectionItem(r)
	return nil
}

// CollectionModel is an ordered, curated list of story and code references.
type CollectionModel struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Author string           `json:"author"`
	Items  []CollectionItem `json:"items"`
}

func (c *CollectionModel) normalize() {
	if c.Items == nil {
		c.Items = []CollectionItem{}
	}
}
