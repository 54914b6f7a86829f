package driven

// ConfigStore holds user settings under dotted keys such as
// "pipeline.output_dir". Typed getters return the zero value when a key is
// missing or holds another type; GetFloat also accepts integers.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value and persists it before returning.
	Set(key string, value any) error

	// Save writes the in-memory settings out. Load discards them and rereads.
	Save() error
	Load() error

	// Path names the backing file, or a placeholder for stores without one.
	Path() string
}
