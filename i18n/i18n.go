// Package i18n translates API message codes into French or English.
package i18n

import "strings"

// DefaultLang is used when no supported language is requested.
const DefaultLang = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"required":                 "Requis",
		"invalid_date":             "Date invalide",
		"invalid_email":            "Adresse e-mail invalide",
		"must_be_positive":         "Doit être positif",
		"must_not_be_negative":     "Ne doit pas être négatif",
		"out_of_range":             "Hors limites",
		"too_long":                 "Trop long",
		"invalid_request":          "Requête invalide",
		"validation_failed":        "Certains champs sont invalides",
		"not_found":                "Introuvable",
		"session_not_found":        "Devis introuvable ou expiré",
		"unauthorized":             "Authentification requise",
		"forbidden":                "Accès refusé",
		"internal_error":           "Erreur interne",
		"storage_unavailable":      "Stockage momentanément indisponible",
		"invalid_override":         "Disponibilité invalide",
		"invalid_range":            "Période invalide",
		"invalid_settings":         "Paramètres invalides",
		"empty_quote":              "Le devis est vide",
		"no_event_date":            "Choisissez une date d'événement",
		"date_no_longer_available": "Cette date n'est plus disponible",
		"surcharge_changed":        "La majoration de cette date a changé, vérifiez votre devis",
		"invalid_contact":          "Coordonnées invalides",
	},
	"en": {
		"required":                 "Required",
		"invalid_date":             "Invalid date",
		"invalid_email":            "Invalid email address",
		"must_be_positive":         "Must be positive",
		"must_not_be_negative":     "Must not be negative",
		"out_of_range":             "Out of range",
		"too_long":                 "Too long",
		"invalid_request":          "Invalid request",
		"validation_failed":        "Some fields are invalid",
		"not_found":                "Not found",
		"session_not_found":        "Quote not found or expired",
		"unauthorized":             "Authentication required",
		"forbidden":                "Access denied",
		"internal_error":           "Internal error",
		"storage_unavailable":      "Storage temporarily unavailable",
		"invalid_override":         "Invalid availability",
		"invalid_range":            "Invalid date range",
		"invalid_settings":         "Invalid settings",
		"empty_quote":              "The quote is empty",
		"no_event_date":            "Choose an event date",
		"date_no_longer_available": "This date is no longer available",
		"surcharge_changed":        "The surcharge for this date changed, please review your quote",
		"invalid_contact":          "Invalid contact details",
	},
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks "en" when the Accept-Language header starts with
// English, and the default otherwise.
func DetectLanguage(acceptLanguage string) string {
	h := strings.ToLower(strings.TrimSpace(acceptLanguage))
	if strings.HasPrefix(h, "en") {
		return "en"
	}
	return DefaultLang
}

// T translates code, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if tbl, ok := messages[lang]; ok {
		if msg, ok := tbl[code]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// Violations translates every violation code of a field map.
func Violations(lang string, v map[string]string) map[string]string {
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = T(lang, code)
	}
	return out
}
