package types

// Migration is a single embedded schema change. SQL holds both directions
// separated by the sql-migrate "-- +migrate" markers.
type Migration struct {
	ID  string
	SQL string
}
