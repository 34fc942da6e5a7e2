package ops

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/taskgate/internal/model"

	_ "modernc.org/sqlite"
)

// CalculateFilteredSum totals units*price for one ticket type.
type CalculateFilteredSum struct {
	db       string
	out      string
	category string
}

// NewCalculateFilteredSum creates the operation for root.
func NewCalculateFilteredSum(root, category string) *CalculateFilteredSum {
	return &CalculateFilteredSum{
		db:       filepath.Join(root, TicketsDB),
		out:      filepath.Join(root, SumOutputFile(category)),
		category: category,
	}
}

// SumOutputFile names the output file, e.g. ticket-sales-gold.txt.
func SumOutputFile(category string) string {
	return "ticket-sales-" + strings.ToLower(category) + ".txt"
}

func (o *CalculateFilteredSum) ID() model.OperationID { return model.CalculateFilteredSum }

func (o *CalculateFilteredSum) Targets() []string { return []string{o.db, o.out} }

func (o *CalculateFilteredSum) Run(ctx context.Context) (string, error) {
	total, err := sumCategory(ctx, o.db, o.category)
	if err != nil {
		return "", err
	}

	text := strconv.FormatFloat(total, 'f', -1, 64)
	if err := writeOutput(o.out, []byte(text)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Total %s sales: %s", o.category, text), nil
}

// sumCategory opens the database read-only so a missing file is an error
// rather than an empty database.
func sumCategory(ctx context.Context, path, category string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("open ticket database: %w", err)
	}

	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return 0, fmt.Errorf("open ticket database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var total sql.NullFloat64
	query := "SELECT SUM(units * price) FROM " + TicketsTable + " WHERE type = ?"
	if err := db.QueryRowContext(ctx, query, category).Scan(&total); err != nil {
		return 0, fmt.Errorf("query ticket sales: %w", err)
	}
	return total.Float64, nil
}
