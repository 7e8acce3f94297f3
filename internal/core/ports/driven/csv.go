package driven

// CSVReader loads delimited text files.
type CSVReader interface {
	// ReadFile returns one map per data row, keyed by the header row.
	// Invalid UTF-8 is replaced rather than rejected.
	ReadFile(path string) ([]map[string]string, error)
}
