package payment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

// Method describes one mobile-money payment option shown to contributors.
type Method struct {
	Id          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Countries   []string `yaml:"countries"`
}

type methodCatalog struct {
	Methods []Method `yaml:"methods"`
}

// DefaultMethods is the fallback catalog when no file is configured or the
// configured file cannot be read.
func DefaultMethods() []Method {
	return []Method{
		{
			Id:          "orange_money",
			Name:        "Orange Money",
			Icon:        "/icons/orange-money.png",
			Description: "Paiement via Orange Money",
			Countries:   []string{"SN", "CI", "ML", "BF"},
		},
		{
			Id:          "mtn_money",
			Name:        "MTN Mobile Money",
			Icon:        "/icons/mtn-money.png",
			Description: "Paiement via MTN Mobile Money",
			Countries:   []string{"GH", "UG", "RW", "ZM"},
		},
		{
			Id:          "moov_money",
			Name:        "Moov Money",
			Icon:        "/icons/moov-money.png",
			Description: "Paiement via Moov Money",
			Countries:   []string{"SN", "CI", "TG", "BJ"},
		},
		{
			Id:          "wave",
			Name:        "Wave",
			Icon:        "/icons/wave.png",
			Description: "Paiement via Wave",
			Countries:   []string{"SN", "CI", "UG"},
		},
	}
}

// LoadMethodCatalog reads the payment method catalog from a yaml file.
func LoadMethodCatalog(methodsFile string) ([]Method, error) {
	var methodsPath string
	if filepath.IsAbs(methodsFile) {
		methodsPath = methodsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		methodsPath = filepath.Join(wd, methodsFile)
	}

	data, err := os.ReadFile(methodsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", methodsFile, err)
	}

	var catalog methodCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", methodsFile, err)
	}

	for i, method := range catalog.Methods {
		if method.Id == "" {
			return nil, fmt.Errorf("method at index %d missing id", i)
		}
		if method.Name == "" {
			return nil, fmt.Errorf("method at index %d missing name", i)
		}
	}

	return catalog.Methods, nil
}

// MethodsForCountry filters the catalog by country code. An empty result
// falls back to the full catalog rather than offering nothing.
func MethodsForCountry(methods []Method, country string) []Method {
	if country == "" {
		return methods
	}
	filtered := make([]Method, 0, len(methods))
	for _, method := range methods {
		for _, c := range method.Countries {
			if strings.EqualFold(c, country) {
				filtered = append(filtered, method)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return methods
	}
	return filtered
}

// FindMethod looks a method up by id.
func FindMethod(methods []Method, id string) (Method, bool) {
	for _, method := range methods {
		if method.Id == id {
			return method, true
		}
	}
	return Method{}, false
}

var phoneCleaner = regexp.MustCompile(`[\s\-()]`)

// e164 covers the numbers the mobile-money providers accept.
var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// FormatPhoneNumber strips separators and prefixes the dial code when the
// number carries none. A leading 0 trunk digit is dropped.
func FormatPhoneNumber(phoneNumber, dialCode string) string {
	formatted := phoneCleaner.ReplaceAllString(phoneNumber, "")
	if strings.HasPrefix(formatted, "+") {
		return formatted
	}
	formatted = strings.TrimPrefix(formatted, "0")
	return dialCode + formatted
}

// ValidatePhoneNumber formats and validates a phone number, returning the
// normalized form.
func ValidatePhoneNumber(phoneNumber, dialCode string) (string, error) {
	formatted := FormatPhoneNumber(phoneNumber, dialCode)
	if !e164.MatchString(formatted) {
		return "", fmt.Errorf("format de numéro de téléphone invalide: %q", phoneNumber)
	}
	return formatted, nil
}
