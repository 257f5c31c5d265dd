package stage

import "strings"

// Health is a handler's readiness as reported by the status endpoint.
type Health struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}

// Missing reports name as ready when items is empty, otherwise as not ready
// with a "missing <what>: a, b" detail.
func Missing(name, what string, items []string) Health {
	if len(items) == 0 {
		return Healthy(name)
	}
	return Unhealthy(name, "missing "+what+": "+strings.Join(items, ", "))
}
