package storage

import "fmt"

// DeleteOlderThan deletes samples whose timestamp is before the given unix
// epoch. Returns the number of deleted rows.
func (d *DB) DeleteOlderThan(before int64) (int64, error) {
	res, err := d.db.Exec("DELETE FROM samples WHERE timestamp < ?", before)
	if err != nil {
		return 0, fmt.Errorf("delete samples: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
