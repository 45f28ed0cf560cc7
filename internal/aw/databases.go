package aw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Databases wraps the document store surface for one database.
type Databases struct {
	client     *Client
	databaseID string
}

// NewDatabases creates the document service bound to a database ID.
func NewDatabases(c *Client, databaseID string) *Databases {
	return &Databases{client: c, databaseID: databaseID}
}

// DatabaseID returns the bound database ID.
func (d *Databases) DatabaseID() string {
	return d.databaseID
}

type documentList struct {
	Total     int             `json:"total"`
	Documents json.RawMessage `json:"documents"`
}

// List fetches all documents of a collection matching the given query
// strings (see the query package) and unmarshals the result slice into out.
func (d *Databases) List(ctx context.Context, collectionID string, queries []string, out any) error {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}
	var list documentList
	if err := d.client.call(ctx, http.MethodGet, d.collectionPath(collectionID)+"/documents", params, nil, &list); err != nil {
		return err
	}
	if out == nil || len(list.Documents) == 0 {
		return nil
	}
	if err := json.Unmarshal(list.Documents, out); err != nil {
		return fmt.Errorf("decode documents: %w", err)
	}
	return nil
}

// Get fetches a document by ID. A missing document surfaces as a not-found
// *Error, distinguishable via IsNotFound.
func (d *Databases) Get(ctx context.Context, collectionID, documentID string, out any) error {
	return d.client.call(ctx, http.MethodGet, d.documentPath(collectionID, documentID), nil, nil, out)
}

// Create stores a new document under the given ID.
func (d *Databases) Create(ctx context.Context, collectionID, documentID string, data any, out any) error {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	return d.client.call(ctx, http.MethodPost, d.collectionPath(collectionID)+"/documents", nil, body, out)
}

// Update patches an existing document.
func (d *Databases) Update(ctx context.Context, collectionID, documentID string, data any) error {
	body := map[string]any{"data": data}
	return d.client.call(ctx, http.MethodPatch, d.documentPath(collectionID, documentID), nil, body, nil)
}

func (d *Databases) collectionPath(collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s", d.databaseID, collectionID)
}

func (d *Databases) documentPath(collectionID, documentID string) string {
	return d.collectionPath(collectionID) + "/documents/" + documentID
}
