package models

import "encoding/json"

// Course is a read-only record of the courses collection. Fields the client does not
// model are kept in Attributes so a course survives a decode/encode round trip.
type Course struct {
	ID         ID             `json:"id"`
	Title      string         `json:"title"`
	Attributes map[string]any `json:"-"`
}

// UnmarshalJSON decodes the known fields and stashes the rest.
func (c *Course) UnmarshalJSON(data []byte) error {
	type plain Course
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var rest map[string]any
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	delete(rest, "id")
	delete(rest, "title")
	*c = Course(p)
	if len(rest) > 0 {
		c.Attributes = rest
	}
	return nil
}

// MarshalJSON writes the known fields over any stashed attributes.
func (c Course) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out["id"] = c.ID
	out["title"] = c.Title
	return json.Marshal(out)
}

// Attribute returns a stashed attribute formatted as text, or "".
func (c Course) Attribute(name string) string {
	v, ok := c.Attributes[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
