package liststore

import (
	"encoding/json"
	"time"
)

// List is the remote list resource.
type List struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Template    string `json:"template,omitempty"`
}

// ColumnKind is the storage kind of a list column.
type ColumnKind string

const (
	ColumnText     ColumnKind = "text"
	ColumnNote     ColumnKind = "note"
	ColumnNumber   ColumnKind = "number"
	ColumnBoolean  ColumnKind = "boolean"
	ColumnDateTime ColumnKind = "dateTime"
)

// Column is the remote column resource. Only one of the kind objects is
// populated; the server uses their presence to select the storage type.
type Column struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Indexed     bool   `json:"indexed,omitempty"`

	Text     *TextColumn     `json:"text,omitempty"`
	Number   *NumberColumn   `json:"number,omitempty"`
	Boolean  *BooleanColumn  `json:"boolean,omitempty"`
	DateTime *DateTimeColumn `json:"dateTime,omitempty"`
}

type TextColumn struct {
	AllowMultipleLines bool `json:"allowMultipleLines,omitempty"`
}

type NumberColumn struct {
	DecimalPlaces string `json:"decimalPlaces,omitempty"`
}

type BooleanColumn struct{}

type DateTimeColumn struct {
	Format string `json:"format,omitempty"`
}

// Kind reports the storage kind of the column.
func (c *Column) Kind() ColumnKind {
	switch {
	case c.Number != nil:
		return ColumnNumber
	case c.Boolean != nil:
		return ColumnBoolean
	case c.DateTime != nil:
		return ColumnDateTime
	case c.Text != nil && c.Text.AllowMultipleLines:
		return ColumnNote
	default:
		return ColumnText
	}
}

// NewColumn builds a column resource for the given kind.
func NewColumn(name string, kind ColumnKind, indexed bool) Column {
	col := Column{Name: name, Indexed: indexed}
	switch kind {
	case ColumnNumber:
		col.Number = &NumberColumn{}
	case ColumnBoolean:
		col.Boolean = &BooleanColumn{}
	case ColumnDateTime:
		col.DateTime = &DateTimeColumn{}
	case ColumnNote:
		col.Text = &TextColumn{AllowMultipleLines: true}
	default:
		col.Text = &TextColumn{}
	}
	return col
}

// Identity is the resolved actor on a list item.
type Identity struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// IdentitySet mirrors the remote createdBy/lastModifiedBy wrapper.
type IdentitySet struct {
	User Identity `json:"user"`
}

// Item is the remote list-item resource. Fields carries the typed columns
// as a raw map; decoding into domain entities happens at the repository
// boundary.
type Item struct {
	ID                   string         `json:"id"`
	Fields               map[string]any `json:"fields,omitempty"`
	CreatedBy            IdentitySet    `json:"createdBy,omitempty"`
	CreatedDateTime      time.Time      `json:"createdDateTime,omitempty"`
	LastModifiedDateTime time.Time      `json:"lastModifiedDateTime,omitempty"`
}

// ItemPage is one page of items. NextToken is the opaque continuation
// token to pass back verbatim on the next call; empty means last page.
type ItemPage struct {
	Items     []Item
	NextToken string
	// Count is the server-reported total when the query requested it,
	// -1 when the server did not include one.
	Count int64
}

type collectionResponse struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
	Count    *int64            `json:"@odata.count"`
}
