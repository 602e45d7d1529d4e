package backend

// Table describes one backend table to a Resource.
type Table struct {
	// Name is the table name.
	Name string
	// Columns lists every column in select order.
	Columns []string
	// InsertColumns lists the columns written on insert. Generated columns
	// (timestamps stamped by the database) are left out.
	InsertColumns []string
	// SoftDelete marks tables with a deleted_at column. List, Get and Update
	// on such tables only see live rows.
	SoftDelete bool
	// DefaultOrder is applied when the caller gives no ordering.
	DefaultOrder []string
}
