package notion

import (
	"strings"
	"time"
)

type PropertyType string

const (
	TypeTitle    PropertyType = "title"
	TypeRichText PropertyType = "rich_text"
	TypeSelect   PropertyType = "select"
	TypeDate     PropertyType = "date"
	TypeRelation PropertyType = "relation"
)

type (
	TextContent struct {
		Content string `json:"content"`
	}

	RichText struct {
		Type      string       `json:"type,omitempty"`
		Text      *TextContent `json:"text,omitempty"`
		PlainText string       `json:"plain_text,omitempty"`
	}

	SelectOption struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name"`
	}

	DateValue struct {
		Start    string  `json:"start"`
		End      *string `json:"end,omitempty"`
		TimeZone *string `json:"time_zone,omitempty"`
	}

	Reference struct {
		ID string `json:"id"`
	}

	// Property is one typed field of a page. Only the member matching Type is set.
	Property struct {
		ID       string        `json:"id,omitempty"`
		Type     PropertyType  `json:"type,omitempty"`
		Title    []RichText    `json:"title,omitempty"`
		RichText []RichText    `json:"rich_text,omitempty"`
		Select   *SelectOption `json:"select,omitempty"`
		Date     *DateValue    `json:"date,omitempty"`
		Relation []Reference   `json:"relation,omitempty"`
	}

	Properties map[string]Property

	// Parent is where a page gets created: a database or another page.
	Parent struct {
		DatabaseID string `json:"database_id,omitempty"`
		PageID     string `json:"page_id,omitempty"`
	}

	Page struct {
		Object      string     `json:"object"`
		ID          string     `json:"id"`
		CreatedTime time.Time  `json:"created_time"`
		Archived    bool       `json:"archived"`
		URL         string     `json:"url,omitempty"`
		Parent      Parent     `json:"parent"`
		Properties  Properties `json:"properties"`
	}

	QueryResult struct {
		Object     string  `json:"object"`
		Results    []Page  `json:"results"`
		HasMore    bool    `json:"has_more"`
		NextCursor *string `json:"next_cursor"`
	}
)

func InDatabase(id string) Parent { return Parent{DatabaseID: id} }
func UnderPage(id string) Parent  { return Parent{PageID: id} }

// Property builders

func Title(content string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &TextContent{Content: content}}}}
}

func Text(content string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &TextContent{Content: content}}}}
}

func Select(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func Date(start string) Property {
	return Property{Date: &DateValue{Start: start}}
}

func Relation(ids ...string) Property {
	refs := make([]Reference, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Reference{ID: id})
	}
	return Property{Relation: refs}
}

// Accessors. Each returns false when the property is missing, unset or empty.

func (rt RichText) String() string {
	if rt.PlainText != "" {
		return rt.PlainText
	}
	if rt.Text != nil {
		return rt.Text.Content
	}
	return ""
}

func joinText(rts []RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		b.WriteString(rt.String())
	}
	return b.String()
}

func (p Properties) Title(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	s := joinText(prop.Title)
	return s, s != ""
}

func (p Properties) Text(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	s := joinText(prop.RichText)
	return s, s != ""
}

func (p Properties) Select(name string) (string, bool) {
	prop, ok := p[name]
	if !ok || prop.Select == nil {
		return "", false
	}
	return prop.Select.Name, prop.Select.Name != ""
}

func (p Properties) Date(name string) (DateValue, bool) {
	prop, ok := p[name]
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return DateValue{}, false
	}
	return *prop.Date, true
}

func (p Properties) Relation(name string) ([]string, bool) {
	prop, ok := p[name]
	if !ok || len(prop.Relation) == 0 {
		return nil, false
	}
	ids := make([]string, 0, len(prop.Relation))
	for _, ref := range prop.Relation {
		ids = append(ids, ref.ID)
	}
	return ids, true
}
