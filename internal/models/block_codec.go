package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// The wire layout of a Block follows the Notion API:
//
//	{"id": "...", "type": "paragraph", "has_children": false,
//	 "paragraph": {"rich_text": [...], "children": [...]}}
//
// Resolved children live inside the payload object, next to the payload fields.

type blockEnvelope struct {
	ID             string     `json:"id"`
	Type           BlockType  `json:"type"`
	HasChildren    bool       `json:"has_children"`
	CreatedTime    *time.Time `json:"created_time,omitempty"`
	LastEditedTime *time.Time `json:"last_edited_time,omitempty"`
}

// MarshalJSON encodes the block in the Notion layout.
func (b Block) MarshalJSON() ([]byte, error) {
	payload := map[string]json.RawMessage{}
	if b.Content != nil {
		raw, err := json.Marshal(b.Content)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", b.Type, err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", b.Type, err)
		}
	}
	if len(b.Children) > 0 {
		raw, err := json.Marshal(b.Children)
		if err != nil {
			return nil, err
		}
		payload["children"] = raw
	}

	out := map[string]any{
		"id":           b.ID,
		"type":         b.Type,
		"has_children": b.HasChildren,
		string(b.Type): payload,
	}
	if !b.CreatedAt.IsZero() {
		out["created_time"] = b.CreatedAt
	}
	if !b.LastEditedAt.IsZero() {
		out["last_edited_time"] = b.LastEditedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a block from the Notion layout. Unknown block types
// decode to BlockUnsupported instead of failing.
func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode block: %w", err)
	}
	if env.Type == "" {
		return fmt.Errorf("decode block %s: missing type", env.ID)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode block %s: %w", env.ID, err)
	}

	typ, content := NewContent(env.Type)
	var children []Block
	if raw, ok := fields[string(env.Type)]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, content); err != nil {
			return fmt.Errorf("decode %s block %s: %w", env.Type, env.ID, err)
		}
		var nested struct {
			Children []Block `json:"children"`
		}
		if err := json.Unmarshal(raw, &nested); err != nil {
			return fmt.Errorf("decode children of %s: %w", env.ID, err)
		}
		children = nested.Children
	}

	*b = Block{
		ID:          env.ID,
		Type:        typ,
		HasChildren: env.HasChildren,
		Content:     content,
		Children:    children,
	}
	if env.CreatedTime != nil {
		b.CreatedAt = *env.CreatedTime
	}
	if env.LastEditedTime != nil {
		b.LastEditedAt = *env.LastEditedTime
	}
	return nil
}
