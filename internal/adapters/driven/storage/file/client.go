package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// ClientExtensions lists the intake file extensions LoadClient understands.
var ClientExtensions = []string{".json", ".yaml", ".yml"}

// IsClientFile reports whether path has an intake file extension.
func IsClientFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ClientExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadClient reads a client intake record from a JSON or YAML file and
// validates it.
func LoadClient(path string) (domain.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Client{}, fmt.Errorf("read client file: %w", err)
	}
	client, err := DecodeClient(data, filepath.Ext(path))
	if err != nil {
		return domain.Client{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return client, nil
}

// DecodeClient parses an intake record. YAML is converted to JSON first so
// both formats share the client_type dispatch.
func DecodeClient(data []byte, ext string) (domain.Client, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return domain.Client{}, fmt.Errorf("%w: parse yaml: %w", domain.ErrInvalidInput, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return domain.Client{}, fmt.Errorf("%w: convert yaml: %w", domain.ErrInvalidInput, err)
		}
		data = converted
	case ".json", "":
	default:
		return domain.Client{}, fmt.Errorf("%w: client file extension %q", domain.ErrUnsupportedType, ext)
	}

	var client domain.Client
	if err := json.Unmarshal(data, &client); err != nil {
		return domain.Client{}, fmt.Errorf("%w: parse client: %w", domain.ErrInvalidInput, err)
	}
	if err := client.Validate(); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}
