package instance

import "os"

// GetID identifies this storefront process in logs: STOREFRONT_INSTANCE_ID,
// then the platform's DYNO, then the hostname.
func GetID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
