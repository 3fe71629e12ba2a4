package watcher

import "testing"

func TestResolveServiceAndPath(t *testing.T) {
	tests := []struct {
		name, arg, sender, wantService, wantPath string
	}{
		{"path only", "/StatusNotifierItem", ":1.42", ":1.42", "/StatusNotifierItem"},
		{"absolute service", ":1.99", ":1.1", ":1.99", "/StatusNotifierItem"},
		{"bare name", "myapp", ":1.1", "myapp", "/StatusNotifierItem"},
		{"empty falls back to sender", "", ":1.7", ":1.7", "/StatusNotifierItem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, path := resolveServiceAndPath(tt.arg, tt.sender)
			if service != tt.wantService || path != tt.wantPath {
				t.Errorf("resolveServiceAndPath(%q, %q) = %q, %q; want %q, %q",
					tt.arg, tt.sender, service, path, tt.wantService, tt.wantPath)
			}
		})
	}
}
