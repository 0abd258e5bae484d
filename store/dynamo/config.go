package dynamo

// Config holds configuration for the Store.
type Config struct {
	// TableName is the single table holding blogs, posts and slug guards.
	// Default: "one-table"
	TableName string

	// IndexName is the global secondary index keyed on the gsi attribute.
	// Default: "gsi"
	IndexName string
}

// DefaultConfig returns the table layout used by CreateTable.
func DefaultConfig() Config {
	return Config{
		TableName: "one-table",
		IndexName: "gsi",
	}
}

// validate fills in missing values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "one-table"
	}
	if c.IndexName == "" {
		c.IndexName = "gsi"
	}
}
