package driven

// ConfigStore is the persisted settings tree, addressed by dot keys such
// as "ask.top_k" or "pipeline.chunker.overlap". Typed getters return the
// zero value for a missing or mistyped key.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value and persists it. A key that would turn a value into
	// a table, or the reverse, is domain.ErrInvalidInput.
	Set(key string, value any) error

	Save() error
	Load() error
	Path() string
}
