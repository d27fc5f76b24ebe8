// Package catalogue loads the static recipe catalogue and user profiles from
// YAML or JSON files, validating every record before it reaches the domain.
package catalogue

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/pkg/errors"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleCatalogue []byte

// SampleSource names the embedded catalogue in logs and errors
const SampleSource = "embedded:sample.yaml"

// Format is a serialization format for catalogue and profile files
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension, defaulting to YAML
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

type document struct {
	Recipes []recipe.Recipe `json:"recipes" yaml:"recipes" validate:"dive"`
}

// Loader decodes and validates catalogue files
type Loader struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLoader creates a loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		validate: validator.New(),
		logger:   logger.Named("catalogue"),
	}
}

// Load reads the catalogue at path. An empty path selects the embedded
// sample catalogue.
func (l *Loader) Load(path string) (*recipe.Catalogue, error) {
	if path == "" {
		return l.Decode(SampleSource, sampleCatalogue, FormatYAML)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogueInvalidError(path, err)
	}
	return l.Decode(path, data, FormatFor(path))
}

// Decode parses and validates catalogue bytes. source is used for reporting.
func (l *Loader) Decode(source string, data []byte, format Format) (*recipe.Catalogue, error) {
	var doc document
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, errors.NewCatalogueInvalidError(source, err)
	}

	if err := l.validate.Struct(doc); err != nil {
		return nil, errors.NewCatalogueInvalidError(source, toValidationErrors(err))
	}

	cat, err := recipe.NewCatalogue(doc.Recipes)
	if err != nil {
		return nil, errors.NewCatalogueInvalidError(source, err)
	}

	l.logger.Info("Catalogue loaded",
		zap.String("source", source),
		zap.Int("recipes", cat.Len()),
		zap.Uint64("fingerprint", cat.Fingerprint()),
	)
	return cat, nil
}

// LoadProfile reads and validates a profile file
func (l *Loader) LoadProfile(path string) (user.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return user.Profile{}, errors.NewProfileInvalidError(err)
	}

	var profile user.Profile
	if err := unmarshal(data, FormatFor(path), &profile); err != nil {
		return user.Profile{}, errors.NewProfileInvalidError(err)
	}
	if err := l.ValidateProfile(profile); err != nil {
		return user.Profile{}, err
	}
	return profile, nil
}

// ValidateProfile checks profile field constraints. Failures are reported
// as PROFILE_INVALID with one entry per offending field.
func (l *Loader) ValidateProfile(profile user.Profile) error {
	if err := l.validate.Struct(profile); err != nil {
		return errors.NewProfileInvalidError(toValidationErrors(err))
	}
	return nil
}

// Sample returns the embedded sample catalogue
func Sample() *recipe.Catalogue {
	cat, err := NewLoader(nil).Load("")
	if err != nil {
		panic(fmt.Sprintf("embedded catalogue is invalid: %v", err))
	}
	return cat
}

func unmarshal(data []byte, format Format, out interface{}) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(out)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(out)
	}
}

func toValidationErrors(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(errors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Namespace(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()),
		})
	}
	return out
}
