package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gadgethub/auth"
	"gadgethub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierFor(t *testing.T) {
	assert.IsType(t, auth.LogNotifier{}, notifierFor(&config.Config{}))

	n := notifierFor(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "587", SMTPFrom: "shop@example.com"})
	smtp, ok := n.(auth.SMTPNotifier)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.com", smtp.Host)
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "seed", "create-admin"})
}

func TestSeedInMemory(t *testing.T) {
	t.Setenv("STATIC_DIR", t.TempDir())
	file := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"name": "Pixel 8", "description": "phone", "price": 1000, "category": "phone"},
		{"name": "AirPods", "description": "buds", "price": 250, "category": "headset"}
	]`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"seed", "--in-memory", "--file", file})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Seeded 2 products")

	rootCmd.SetArgs([]string{"seed", "--in-memory", "--file", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, rootCmd.Execute())
}
