package probe

import (
	"encoding/json"

	"github.com/hamed0406/proxyprobe/internal/config"
)

const (
	emptySummary = "{}"

	// rawLimit caps the captured body representation, in characters.
	rawLimit = 500
)

// extractors maps a check name to the fields pulled from its JSON object
// body. A name without an extractor keeps the whole object as its summary.
var extractors = map[string]func(body map[string]any) map[string]any{
	"ipify": func(body map[string]any) map[string]any {
		return map[string]any{"ip": body["ip"]}
	},
	"ifconfig": func(body map[string]any) map[string]any {
		var asnOrg any
		if asn, ok := body["asn"].(map[string]any); ok {
			asnOrg = asn["org"]
		}
		return map[string]any{
			"ip":      body["ip"],
			"asn_org": asnOrg,
			"country": body["country"],
			"region":  body["region"],
			"city":    body["city"],
		}
	},
	"httpbin_headers": func(body map[string]any) map[string]any {
		if headers, ok := body["headers"].(map[string]any); ok {
			return headers
		}
		return map[string]any{}
	},
}

// Summarize reduces a response body to its raw capture (capped at rawLimit
// characters) and a compact JSON summary keyed by the check's name. A body
// that fails to parse as JSON when JSON was expected falls back to plain
// text; that is never an error.
func Summarize(check config.Check, body []byte) (summary, raw string) {
	var payload any
	if check.ExpectJSON {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			switch v.(type) {
			case map[string]any, []any:
				payload = v
			}
		}
	}

	var trimmed string
	if payload != nil {
		if enc, err := json.Marshal(payload); err == nil {
			trimmed = truncate(string(enc), rawLimit)
		} else {
			trimmed = truncate(string(body), rawLimit)
		}
	} else {
		trimmed = truncate(string(body), rawLimit)
	}

	var fields map[string]any
	if obj, ok := payload.(map[string]any); ok {
		if extract, ok := extractors[check.Name]; ok {
			fields = extract(obj)
		} else {
			fields = obj
		}
	} else {
		fields = map[string]any{"value": trimmed}
	}

	enc, err := json.Marshal(fields)
	if err != nil {
		return emptySummary, trimmed
	}
	return string(enc), trimmed
}

// truncate limits s to n characters, not bytes, so a multi-byte rune is
// never split.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
