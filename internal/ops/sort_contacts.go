package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/taskgate/internal/model"
)

// SortContacts stable-sorts contacts.json by (last_name, first_name).
type SortContacts struct {
	in  string
	out string
}

// NewSortContacts creates the operation for root.
func NewSortContacts(root string) *SortContacts {
	return &SortContacts{
		in:  filepath.Join(root, ContactsFile),
		out: filepath.Join(root, ContactsSorted),
	}
}

type contactName struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (o *SortContacts) ID() model.OperationID { return model.SortContacts }

func (o *SortContacts) Targets() []string { return []string{o.in, o.out} }

func (o *SortContacts) Run(_ context.Context) (string, error) {
	data, err := os.ReadFile(o.in)
	if err != nil {
		return "", fmt.Errorf("read contacts: %w", err)
	}

	sorted, err := sortContacts(data)
	if err != nil {
		return "", err
	}

	if err := writeOutput(o.out, sorted); err != nil {
		return "", err
	}
	return fmt.Sprintf("Sorted contacts written to %s", ContactsSorted), nil
}

// sortContacts keeps each record verbatim (field order included) and
// reorders the array.
func sortContacts(data []byte) ([]byte, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse contacts: %w", err)
	}

	type entry struct {
		name contactName
		raw  json.RawMessage
	}
	entries := make([]entry, len(raw))
	for i, r := range raw {
		var n contactName
		if err := json.Unmarshal(r, &n); err != nil {
			return nil, fmt.Errorf("parse contact %d: %w", i, err)
		}
		entries[i] = entry{name: n, raw: r}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].name, entries[j].name
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})

	out := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		out[i] = e.raw
	}
	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode contacts: %w", err)
	}
	return append(buf, '\n'), nil
}
